package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
)

// resolveServiceURL picks the query target: an explicit service_url wins,
// otherwise dataset_id is resolved through the cache.
func resolveServiceURL(ctx context.Context, d deps.Deps, datasetID, serviceURL string) (string, error) {
	if serviceURL != "" {
		return serviceURL, nil
	}
	if datasetID == "" {
		return "", fmt.Errorf("%w: service_url or dataset_id is required", domain.ErrInvalidInput)
	}
	rec, err := d.Catalog.DatasetByID(ctx, datasetID)
	if err != nil {
		return "", err
	}
	return rec.URL, nil
}

type featureQueryRequest struct {
	DatasetID      string `json:"dataset_id"`
	ServiceURL     string `json:"service_url"`
	LayerID        int    `json:"layer_id"`
	Where          string `json:"where"`
	OutFields      string `json:"out_fields"`
	ReturnGeometry *bool  `json:"return_geometry"` // default true
	Geometry       string `json:"geometry"`
	GeometryType   string `json:"geometry_type"`
	SpatialRel     string `json:"spatial_rel"`
	MaxRecords     int    `json:"max_records"`
	Format         string `json:"format"`
}

// QueryFeatures runs an attribute query against one layer and passes the
// upstream response through untouched.
func QueryFeatures(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req featureQueryRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, "query_features", err)
			return
		}

		serviceURL, err := resolveServiceURL(r.Context(), d, req.DatasetID, req.ServiceURL)
		if err != nil {
			writeError(w, "query_features", err)
			return
		}

		returnGeometry := true
		if req.ReturnGeometry != nil {
			returnGeometry = *req.ReturnGeometry
		}

		body, err := d.Client.QueryFeatures(r.Context(), arcgis.FeatureQuery{
			ServiceURL:     serviceURL,
			LayerID:        req.LayerID,
			Where:          req.Where,
			OutFields:      req.OutFields,
			ReturnGeometry: returnGeometry,
			Geometry:       req.Geometry,
			GeometryType:   req.GeometryType,
			SpatialRel:     req.SpatialRel,
			MaxRecords:     req.MaxRecords,
			Format:         req.Format,
		})
		if err != nil {
			writeError(w, "query_features", err)
			return
		}
		writeRaw(w, body)
	}
}

type statisticsRequest struct {
	DatasetID     string `json:"dataset_id"`
	ServiceURL    string `json:"service_url"`
	LayerID       int    `json:"layer_id"`
	FieldName     string `json:"field_name"`
	StatisticType string `json:"statistic_type"`
	Where         string `json:"where"`
}

// QueryStatistics computes one aggregate over a layer field.
func QueryStatistics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statisticsRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, "query_statistics", err)
			return
		}

		serviceURL, err := resolveServiceURL(r.Context(), d, req.DatasetID, req.ServiceURL)
		if err != nil {
			writeError(w, "query_statistics", err)
			return
		}

		body, err := d.Client.QueryStatistics(r.Context(), arcgis.StatisticsQuery{
			ServiceURL:    serviceURL,
			LayerID:       req.LayerID,
			Field:         req.FieldName,
			StatisticType: req.StatisticType,
			Where:         req.Where,
		})
		if err != nil {
			writeError(w, "query_statistics", err)
			return
		}
		writeRaw(w, body)
	}
}

type boundingBoxRequest struct {
	DatasetID      string   `json:"dataset_id"`
	ServiceURL     string   `json:"service_url"`
	LayerID        int      `json:"layer_id"`
	XMin           *float64 `json:"xmin"`
	YMin           *float64 `json:"ymin"`
	XMax           *float64 `json:"xmax"`
	YMax           *float64 `json:"ymax"`
	BufferDistance float64  `json:"buffer_distance"`
	MaxRecords     int      `json:"max_records"`
}

// QueryBoundingBox runs an envelope query in WGS84 coordinates, optionally
// widened by a buffer distance in meters.
func QueryBoundingBox(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req boundingBoxRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, "query_bounding_box", err)
			return
		}

		serviceURL, err := resolveServiceURL(r.Context(), d, req.DatasetID, req.ServiceURL)
		if err != nil {
			writeError(w, "query_bounding_box", err)
			return
		}

		for name, v := range map[string]*float64{
			"xmin": req.XMin, "ymin": req.YMin, "xmax": req.XMax, "ymax": req.YMax,
		} {
			if v == nil {
				writeError(w, "query_bounding_box",
					fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name))
				return
			}
		}

		body, err := d.Client.QueryBoundingBox(r.Context(), arcgis.BoundingBoxQuery{
			ServiceURL:     serviceURL,
			LayerID:        req.LayerID,
			XMin:           *req.XMin,
			YMin:           *req.YMin,
			XMax:           *req.XMax,
			YMax:           *req.YMax,
			BufferDistance: req.BufferDistance,
			MaxRecords:     req.MaxRecords,
		})
		if err != nil {
			writeError(w, "query_bounding_box", err)
			return
		}
		writeRaw(w, body)
	}
}

// LayerFields describes the queryable fields of one layer.
// Query params: service_url or dataset_id, and optional layer_id.
func LayerFields(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		serviceURL, err := resolveServiceURL(r.Context(), d, q.Get("dataset_id"), q.Get("service_url"))
		if err != nil {
			writeError(w, "get_layer_fields", err)
			return
		}

		layerID := 0
		if raw := q.Get("layer_id"); raw != "" {
			layerID, err = strconv.Atoi(raw)
			if err != nil {
				writeError(w, "get_layer_fields", invalidNumber("layer_id"))
				return
			}
		}

		schema, err := d.Client.LayerFields(r.Context(), serviceURL, layerID)
		if err != nil {
			writeError(w, "get_layer_fields", err)
			return
		}
		writeJSON(w, http.StatusOK, schema)
	}
}
