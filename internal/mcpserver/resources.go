package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
)

const (
	resourceScheme      = "ethekwini-gis://"
	datasetURITemplate  = resourceScheme + "dataset/{id}"
	serviceURITemplate  = resourceScheme + "service/{name}"
	resourceContentType = "application/json"
)

func (s *Server) registerResources() {
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: datasetURITemplate,
		Name:        "eThekwini GIS dataset",
		Description: "Normalized descriptor of one discovered dataset",
		MIMEType:    resourceContentType,
	}, s.readResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: serviceURITemplate,
		Name:        "eThekwini GIS service",
		Description: "Service index entry keyed by original service name",
		MIMEType:    resourceContentType,
	}, s.readResource)
}

// readResource serves both resource templates. The path decides whether
// the id addresses the dataset cache or the service index.
func (s *Server) readResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	rest, ok := strings.CutPrefix(uri, resourceScheme)
	if !ok {
		return nil, fmt.Errorf("unsupported URI scheme: %s", uri)
	}

	kind, id, _ := strings.Cut(rest, "/")
	if id == "" {
		return nil, fmt.Errorf("%w: resource id missing in %s", domain.ErrInvalidInput, uri)
	}

	var payload any
	switch kind {
	case "dataset":
		rec, err := s.catalog.DatasetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		payload = rec
	case "service":
		snap := s.catalog.Snapshot()
		entry, ok := snap.Services[id]
		if !ok {
			return nil, fmt.Errorf("%w: service %s", domain.ErrDatasetNotFound, id)
		}
		payload = entry
	default:
		return nil, fmt.Errorf("%w: unknown resource type %q", domain.ErrInvalidInput, kind)
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: resourceContentType,
			Text:     string(body),
		}},
	}, nil
}
