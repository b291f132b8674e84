package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/utils"
)

// Client issues parameterized GET requests against ArcGIS REST endpoints.
//
// Two timeout classes exist: short probes for metadata discovery (an
// unreachable service is simply skipped) and long queries for actual data
// (result sets can be large and failures must reach the caller).
// There is no retry logic; a call is a single attempt.
type Client struct {
	http         *http.Client
	probeTimeout time.Duration
	queryTimeout time.Duration
	logger       logger.Logger
}

// NewClient builds a Client around the given http.Client. The http.Client
// is injected so tests can point it at a stub remote.
func NewClient(httpClient *http.Client, probeTimeout, queryTimeout time.Duration, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}
	if queryTimeout <= 0 {
		queryTimeout = 60 * time.Second
	}
	return &Client{
		http:         httpClient,
		probeTimeout: probeTimeout,
		queryTimeout: queryTimeout,
		logger:       log,
	}
}

// getJSON performs one GET with the given params and timeout and returns the
// raw body. Non-2xx statuses become a *RemoteError.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, timeout time.Duration) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("f") == "" {
		params.Set("f", "json")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{
			URL:    rawURL,
			Status: resp.StatusCode,
			Body:   truncate(string(body), 512),
		}
	}

	return body, nil
}

// Catalog probes a services root or folder endpoint. Network failures and
// malformed bodies come back as plain errors; an in-band server error is
// returned as *ServerError so the discovery walker can tell a broken
// catalog apart from an unreachable one.
func (c *Client) Catalog(ctx context.Context, catalogURL string) (*CatalogResponse, error) {
	body, err := c.getJSON(ctx, catalogURL, nil, c.probeTimeout)
	if err != nil {
		return nil, err
	}

	var catalog CatalogResponse
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("malformed catalog response from %s: %w", catalogURL, err)
	}
	if catalog.Error != nil {
		return nil, fmt.Errorf("catalog %s: %w", catalogURL, catalog.Error)
	}

	return &catalog, nil
}

// ServiceInfo probes one service descriptor. Any failure means "service
// unreachable, skip it" to the caller.
func (c *Client) ServiceInfo(ctx context.Context, serviceURL string) (*ServiceInfo, error) {
	body, err := c.getJSON(ctx, serviceURL, nil, c.probeTimeout)
	if err != nil {
		return nil, err
	}

	var info ServiceInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("malformed service descriptor from %s: %w", serviceURL, err)
	}
	if info.Error != nil {
		return nil, fmt.Errorf("service %s: %w", serviceURL, info.Error)
	}

	return &info, nil
}

// QueryFeatures runs an attribute/spatial feature query and returns the
// remote answer verbatim.
func (c *Client) QueryFeatures(ctx context.Context, q FeatureQuery) (json.RawMessage, error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}
	return c.getJSON(ctx, layerQueryURL(q.ServiceURL, q.LayerID), params, c.queryTimeout)
}

// QueryStatistics runs a single-field statistics query and returns the
// remote answer verbatim.
func (c *Client) QueryStatistics(ctx context.Context, q StatisticsQuery) (json.RawMessage, error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}
	return c.getJSON(ctx, layerQueryURL(q.ServiceURL, q.LayerID), params, c.queryTimeout)
}

// QueryBoundingBox runs an envelope intersection query, optionally widened
// by a buffer distance in meters.
func (c *Client) QueryBoundingBox(ctx context.Context, q BoundingBoxQuery) (json.RawMessage, error) {
	params, err := q.params()
	if err != nil {
		return nil, err
	}
	return c.getJSON(ctx, layerQueryURL(q.ServiceURL, q.LayerID), params, c.queryTimeout)
}

// LayerFields fetches layer metadata only (no feature rows) and extracts
// the field list.
func (c *Client) LayerFields(ctx context.Context, serviceURL string, layerID int) (*LayerSchema, error) {
	if serviceURL == "" {
		return nil, missingArgument("service_url")
	}

	body, err := c.getJSON(ctx, layerURL(serviceURL, layerID), nil, c.queryTimeout)
	if err != nil {
		return nil, err
	}

	var meta layerMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("malformed layer metadata: %w", err)
	}
	if meta.Error != nil {
		return nil, fmt.Errorf("layer %d of %s: %w", layerID, serviceURL, meta.Error)
	}

	return meta.schema(), nil
}

// layerURL joins a service URL and a layer id, normalizing the trailing
// separator exactly once.
func layerURL(serviceURL string, layerID int) string {
	if !strings.HasSuffix(serviceURL, "/") {
		serviceURL += "/"
	}
	return fmt.Sprintf("%s%d", serviceURL, layerID)
}

// layerQueryURL is layerURL plus the query operation.
func layerQueryURL(serviceURL string, layerID int) string {
	return layerURL(serviceURL, layerID) + "/query"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
