package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/config"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

type toolRegistration struct {
	tool    mcp.Tool
	handler mcp.ToolHandler
}

// targetProperties are the schema properties shared by every tool that
// addresses one service: an explicit URL, or a dataset id resolved
// through the cache.
func targetProperties() map[string]any {
	return map[string]any{
		"service_url": map[string]any{
			"type":        "string",
			"description": "Feature service URL. Either this or dataset_id is required.",
		},
		"dataset_id": map[string]any{
			"type":        "string",
			"description": "Dataset ID or name to resolve the service URL from.",
		},
		"layer_id": map[string]any{
			"type":        "integer",
			"description": "Layer ID (default: 0)",
			"default":     0,
		},
	}
}

// targetURL picks the query target: an explicit service_url wins,
// otherwise dataset_id is resolved through the cache.
func (s *Server) targetURL(ctx context.Context, datasetID, serviceURL string) (string, error) {
	if serviceURL != "" {
		return serviceURL, nil
	}
	if datasetID == "" {
		return "", fmt.Errorf("%w: service_url or dataset_id is required", domain.ErrInvalidInput)
	}
	rec, err := s.catalog.DatasetByID(ctx, datasetID)
	if err != nil {
		return "", err
	}
	return rec.URL, nil
}

func (s *Server) tools() []toolRegistration {
	return []toolRegistration{
		{
			tool: mcp.Tool{
				Name:        "refresh_datasets",
				Description: "Refresh and discover eThekwini GIS datasets and services",
				InputSchema: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
					"required":   []string{},
				},
			},
			handler: s.handleRefreshDatasets,
		},
		{
			tool: mcp.Tool{
				Name:        "search_datasets",
				Description: "Search eThekwini datasets by keyword, category, or tag",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search query (keywords, tags, or categories)",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Filter by category (e.g., 'Transportation', 'Environment')",
						},
						"limit": map[string]any{
							"type":        "integer",
							"description": "Maximum number of results",
							"default":     20,
						},
					},
				},
			},
			handler: s.handleSearchDatasets,
		},
		{
			tool: mcp.Tool{
				Name:        "get_dataset_info",
				Description: "Get detailed information about a specific dataset",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"dataset_id": map[string]any{
							"type":        "string",
							"description": "Dataset ID or name",
						},
					},
					"required": []string{"dataset_id"},
				},
			},
			handler: s.handleGetDatasetInfo,
		},
		{
			tool: mcp.Tool{
				Name:        "query_feature_layer",
				Description: "Query features from a dataset's feature layer",
				InputSchema: map[string]any{
					"type": "object",
					"properties": mergeProperties(targetProperties(), map[string]any{
						"where": map[string]any{
							"type":        "string",
							"description": "SQL WHERE clause for filtering",
							"default":     "1=1",
						},
						"geometry": map[string]any{
							"type":        "string",
							"description": "Geometry for spatial filtering (WKT or JSON)",
						},
						"spatial_rel": map[string]any{
							"type":        "string",
							"description": "Spatial relationship (intersects, contains, within, etc.)",
							"default":     "esriSpatialRelIntersects",
						},
						"return_geometry": map[string]any{
							"type":        "boolean",
							"description": "Include geometry in results",
							"default":     true,
						},
						"max_records": map[string]any{
							"type":        "integer",
							"description": "Maximum records to return",
							"default":     100,
						},
						"out_fields": map[string]any{
							"type":        "string",
							"description": "Comma-separated list of fields to return (* for all)",
							"default":     "*",
						},
					}),
				},
			},
			handler: s.handleQueryFeatureLayer,
		},
		{
			tool: mcp.Tool{
				Name:        "get_layer_statistics",
				Description: "Get statistics for numeric fields in a layer",
				InputSchema: map[string]any{
					"type": "object",
					"properties": mergeProperties(targetProperties(), map[string]any{
						"field_name": map[string]any{
							"type":        "string",
							"description": "Field name for statistics",
						},
						"statistic_type": map[string]any{
							"type":        "string",
							"description": "Type of statistic (count, sum, min, max, avg, stddev)",
							"default":     "count",
						},
						"where": map[string]any{
							"type":        "string",
							"description": "WHERE clause for filtering",
							"default":     "1=1",
						},
					}),
					"required": []string{"field_name"},
				},
			},
			handler: s.handleGetLayerStatistics,
		},
		{
			tool: mcp.Tool{
				Name:        "list_municipal_services",
				Description: "List available municipal service categories",
				InputSchema: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
					"required":   []string{},
				},
			},
			handler: s.handleListMunicipalServices,
		},
		{
			tool: mcp.Tool{
				Name:        "get_layer_fields",
				Description: "Get field information for a feature layer",
				InputSchema: map[string]any{
					"type":       "object",
					"properties": targetProperties(),
				},
			},
			handler: s.handleGetLayerFields,
		},
		{
			tool: mcp.Tool{
				Name:        "spatial_query_by_coordinates",
				Description: "Query features within a bounding box or near coordinates",
				InputSchema: map[string]any{
					"type": "object",
					"properties": mergeProperties(targetProperties(), map[string]any{
						"xmin": map[string]any{
							"type":        "number",
							"description": "Minimum X coordinate (longitude)",
						},
						"ymin": map[string]any{
							"type":        "number",
							"description": "Minimum Y coordinate (latitude)",
						},
						"xmax": map[string]any{
							"type":        "number",
							"description": "Maximum X coordinate (longitude)",
						},
						"ymax": map[string]any{
							"type":        "number",
							"description": "Maximum Y coordinate (latitude)",
						},
						"buffer_distance": map[string]any{
							"type":        "number",
							"description": "Buffer distance in meters for point queries",
						},
						"max_records": map[string]any{
							"type":        "integer",
							"description": "Maximum records to return",
							"default":     100,
						},
					}),
					"required": []string{"xmin", "ymin", "xmax", "ymax"},
				},
			},
			handler: s.handleSpatialQuery,
		},
		{
			tool: mcp.Tool{
				Name:        "add_known_service",
				Description: "Add a known eThekwini service URL to the server",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"service_name": map[string]any{
							"type":        "string",
							"description": "Name for the service",
						},
						"service_url": map[string]any{
							"type":        "string",
							"description": "Full URL to the ArcGIS service",
						},
					},
					"required": []string{"service_name", "service_url"},
				},
			},
			handler: s.handleAddKnownService,
		},
		{
			tool: mcp.Tool{
				Name:        "query_leases_dataset",
				Description: "Query the eThekwini Leases dataset with specific filters",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"where": map[string]any{
							"type":        "string",
							"description": "SQL WHERE clause for filtering leases",
							"default":     "1=1",
						},
						"layer_id": map[string]any{
							"type":        "integer",
							"description": "Layer ID in the Leases service",
							"default":     11,
						},
						"format": map[string]any{
							"type":        "string",
							"description": "Output format (json, geojson)",
							"default":     "geojson",
						},
						"max_records": map[string]any{
							"type":        "integer",
							"description": "Maximum records to return",
							"default":     100,
						},
					},
				},
			},
			handler: s.handleQueryLeases,
		},
	}
}

func mergeProperties(base, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func (s *Server) handleRefreshDatasets(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, report, err := s.catalog.Discover(ctx, true)
	if err != nil {
		return errorResult("refresh_datasets", err), nil
	}

	summary := map[string]any{
		"total_datasets": len(snap.Datasets),
		"discovered":     report.Succeeded(),
		"skipped":        report.Skipped(),
		"last_refresh":   s.catalog.LastRefresh().UTC(),
	}
	return jsonResult(summary)
}

type searchArgs struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

func (s *Server) handleSearchDatasets(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("search_datasets", err), nil
	}

	results := s.catalog.Search(ctx, args.Query, args.Category, args.Limit)
	s.logger.Debug("dataset search",
		logger.String("query", args.Query),
		logger.Int("results", len(results)))

	return jsonResult(map[string]any{
		"query":   args.Query,
		"results": results,
		"total":   len(results),
	})
}

type datasetInfoArgs struct {
	DatasetID string `json:"dataset_id"`
}

func (s *Server) handleGetDatasetInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args datasetInfoArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("get_dataset_info", err), nil
	}
	if args.DatasetID == "" {
		return errorResult("get_dataset_info",
			fmt.Errorf("%w: dataset_id is required", domain.ErrInvalidInput)), nil
	}

	rec, err := s.catalog.DatasetByID(ctx, args.DatasetID)
	if err != nil {
		return errorResult("get_dataset_info", err), nil
	}
	return jsonResult(rec)
}

type featureLayerArgs struct {
	ServiceURL     string `json:"service_url"`
	DatasetID      string `json:"dataset_id"`
	LayerID        int    `json:"layer_id"`
	Where          string `json:"where"`
	Geometry       string `json:"geometry"`
	SpatialRel     string `json:"spatial_rel"`
	ReturnGeometry *bool  `json:"return_geometry"`
	MaxRecords     int    `json:"max_records"`
	OutFields      string `json:"out_fields"`
}

func (s *Server) handleQueryFeatureLayer(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args featureLayerArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("query_feature_layer", err), nil
	}

	serviceURL, err := s.targetURL(ctx, args.DatasetID, args.ServiceURL)
	if err != nil {
		return errorResult("query_feature_layer", err), nil
	}

	returnGeometry := true
	if args.ReturnGeometry != nil {
		returnGeometry = *args.ReturnGeometry
	}

	body, err := s.client.QueryFeatures(ctx, arcgis.FeatureQuery{
		ServiceURL:     serviceURL,
		LayerID:        args.LayerID,
		Where:          args.Where,
		OutFields:      args.OutFields,
		ReturnGeometry: returnGeometry,
		Geometry:       args.Geometry,
		SpatialRel:     args.SpatialRel,
		MaxRecords:     args.MaxRecords,
	})
	if err != nil {
		return errorResult("query_feature_layer", err), nil
	}
	return rawResult(body), nil
}

type layerStatisticsArgs struct {
	ServiceURL    string `json:"service_url"`
	DatasetID     string `json:"dataset_id"`
	LayerID       int    `json:"layer_id"`
	FieldName     string `json:"field_name"`
	StatisticType string `json:"statistic_type"`
	Where         string `json:"where"`
}

func (s *Server) handleGetLayerStatistics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args layerStatisticsArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("get_layer_statistics", err), nil
	}

	serviceURL, err := s.targetURL(ctx, args.DatasetID, args.ServiceURL)
	if err != nil {
		return errorResult("get_layer_statistics", err), nil
	}

	body, err := s.client.QueryStatistics(ctx, arcgis.StatisticsQuery{
		ServiceURL:    serviceURL,
		LayerID:       args.LayerID,
		Field:         args.FieldName,
		StatisticType: args.StatisticType,
		Where:         args.Where,
	})
	if err != nil {
		return errorResult("get_layer_statistics", err), nil
	}
	return rawResult(body), nil
}

func (s *Server) handleListMunicipalServices(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.Overview(ctx))
}

type layerFieldsArgs struct {
	ServiceURL string `json:"service_url"`
	DatasetID  string `json:"dataset_id"`
	LayerID    int    `json:"layer_id"`
}

func (s *Server) handleGetLayerFields(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args layerFieldsArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("get_layer_fields", err), nil
	}

	serviceURL, err := s.targetURL(ctx, args.DatasetID, args.ServiceURL)
	if err != nil {
		return errorResult("get_layer_fields", err), nil
	}

	schema, err := s.client.LayerFields(ctx, serviceURL, args.LayerID)
	if err != nil {
		return errorResult("get_layer_fields", err), nil
	}
	return jsonResult(schema)
}

type spatialQueryArgs struct {
	ServiceURL     string   `json:"service_url"`
	DatasetID      string   `json:"dataset_id"`
	LayerID        int      `json:"layer_id"`
	XMin           *float64 `json:"xmin"`
	YMin           *float64 `json:"ymin"`
	XMax           *float64 `json:"xmax"`
	YMax           *float64 `json:"ymax"`
	BufferDistance float64  `json:"buffer_distance"`
	MaxRecords     int      `json:"max_records"`
}

func (s *Server) handleSpatialQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args spatialQueryArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("spatial_query_by_coordinates", err), nil
	}

	serviceURL, err := s.targetURL(ctx, args.DatasetID, args.ServiceURL)
	if err != nil {
		return errorResult("spatial_query_by_coordinates", err), nil
	}

	for name, v := range map[string]*float64{
		"xmin": args.XMin, "ymin": args.YMin, "xmax": args.XMax, "ymax": args.YMax,
	} {
		if v == nil {
			return errorResult("spatial_query_by_coordinates",
				fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)), nil
		}
	}

	body, err := s.client.QueryBoundingBox(ctx, arcgis.BoundingBoxQuery{
		ServiceURL:     serviceURL,
		LayerID:        args.LayerID,
		XMin:           *args.XMin,
		YMin:           *args.YMin,
		XMax:           *args.XMax,
		YMax:           *args.YMax,
		BufferDistance: args.BufferDistance,
		MaxRecords:     args.MaxRecords,
	})
	if err != nil {
		return errorResult("spatial_query_by_coordinates", err), nil
	}
	return rawResult(body), nil
}

type addServiceArgs struct {
	ServiceName string `json:"service_name"`
	ServiceURL  string `json:"service_url"`
}

func (s *Server) handleAddKnownService(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args addServiceArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("add_known_service", err), nil
	}

	total, err := s.catalog.RegisterService(ctx, args.ServiceName, args.ServiceURL)
	if err != nil {
		return errorResult("add_known_service", err), nil
	}

	s.logger.Info("service registered",
		logger.String("name", args.ServiceName),
		logger.String("url", args.ServiceURL))

	return jsonResult(map[string]any{
		"service_name":   args.ServiceName,
		"service_url":    args.ServiceURL,
		"total_datasets": total,
	})
}

type leasesArgs struct {
	Where      string `json:"where"`
	LayerID    *int   `json:"layer_id"`
	Format     string `json:"format"`
	MaxRecords int    `json:"max_records"`
}

// handleQueryLeases is a convenience shortcut for the curated Leases
// service. Defaults differ from the generic query: layer 11, geojson out.
func (s *Server) handleQueryLeases(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args leasesArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("query_leases_dataset", err), nil
	}

	leasesURL, ok := s.catalog.Registry().Lookup("Leases")
	if !ok {
		leasesURL = config.DefaultLeasesURL
	}

	layerID := 11
	if args.LayerID != nil {
		layerID = *args.LayerID
	}
	format := args.Format
	if format == "" {
		format = "geojson"
	}

	body, err := s.client.QueryFeatures(ctx, arcgis.FeatureQuery{
		ServiceURL:     leasesURL,
		LayerID:        layerID,
		Where:          args.Where,
		ReturnGeometry: true,
		MaxRecords:     args.MaxRecords,
		Format:         format,
	})
	if err != nil {
		return errorResult("query_leases_dataset", err), nil
	}
	return rawResult(body), nil
}
