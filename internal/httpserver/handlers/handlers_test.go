package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/catalog"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

// fakeArcGIS is a scriptable upstream: path -> (status, JSON body).
type fakeArcGIS struct {
	responses map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeArcGIS() *fakeArcGIS {
	return &fakeArcGIS{responses: make(map[string]fakeResponse)}
}

func (f *fakeArcGIS) set(path string, status int, body string) {
	f.responses[path] = fakeResponse{status: status, body: body}
}

func (f *fakeArcGIS) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := f.responses[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}
}

// newTestDeps wires a catalog and client against the fake upstream, with
// the Leases known service pre-discovered.
func newTestDeps(t *testing.T, fake *fakeArcGIS) (deps.Deps, *httptest.Server) {
	t.Helper()

	fake.set("/", http.StatusOK, `{"services":[],"folders":[]}`)
	fake.set("/Leases/FeatureServer", http.StatusOK,
		`{"serviceDescription":"Lease agreements","layers":[{"id":0}]}`)

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := arcgis.NewClient(srv.Client(), 2*time.Second, 2*time.Second, logger.Nop())
	registry := catalog.NewRegistry()
	registry.Register("Leases", srv.URL+"/Leases/FeatureServer")
	cat := catalog.New(client, registry, srv.URL, catalog.DefaultTTL, logger.Nop())

	if _, _, err := cat.Discover(context.Background(), true); err != nil {
		t.Fatalf("seed discovery failed: %v", err)
	}

	return deps.Deps{
		Logger:        logger.Nop(),
		StartTime:     time.Now(),
		Catalog:       cat,
		Client:        client,
		ReloadTrigger: make(chan struct{}, 1),
	}, srv
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	return resp
}

func TestListDatasets(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	ListDatasets(d)(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp datasetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || len(resp.Datasets) != 1 {
		t.Fatalf("Total = %d, Datasets = %d, want 1/1", resp.Total, len(resp.Datasets))
	}
	if resp.Datasets[0].ID != "leases" {
		t.Errorf("ID = %q, want leases", resp.Datasets[0].ID)
	}
}

func TestGetDataset(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	r := chi.NewRouter()
	r.Get("/api/datasets/{id}", GetDataset(d))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/leases", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "leases" || got.Title != "Lease agreements" {
		t.Errorf("got %+v", got)
	}
}

func TestGetDatasetNotFound(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	r := chi.NewRouter()
	r.Get("/api/datasets/{id}", GetDataset(d))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if resp.Operation != "get_dataset" {
		t.Errorf("Operation = %q, want get_dataset", resp.Operation)
	}
	if resp.Timestamp == "" {
		t.Error("Timestamp is empty")
	}
}

func TestSearchDatasetsInvalidLimit(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	SearchDatasets(d)(rec, httptest.NewRequest(http.MethodGet, "/api/search?limit=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchDatasetsMatch(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	SearchDatasets(d)(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=lease", nil))

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
	if resp.Results[0].ID != "leases" {
		t.Errorf("ID = %q, want leases", resp.Results[0].ID)
	}
}

func TestCategories(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	Categories(d)(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	var resp catalog.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalDatasets != 1 {
		t.Errorf("TotalDatasets = %d, want 1", resp.TotalDatasets)
	}
	if got := resp.Categories["Municipal Services"]; len(got) != 1 || got[0] != "Leases" {
		t.Errorf("Categories[Municipal Services] = %v", got)
	}
}

func TestQueryFeaturesPassthrough(t *testing.T) {
	fake := newFakeArcGIS()
	const upstream = `{"features":[{"attributes":{"ID":7}}]}`
	fake.set("/Leases/FeatureServer/0/query", http.StatusOK, upstream)
	d, _ := newTestDeps(t, fake)

	body := strings.NewReader(`{"dataset_id":"leases","where":"ID=7"}`)
	rec := httptest.NewRecorder()
	QueryFeatures(d)(rec, httptest.NewRequest(http.MethodPost, "/api/query", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != upstream {
		t.Errorf("body = %s, want upstream passthrough", rec.Body.String())
	}
}

func TestQueryFeaturesMissingTarget(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	QueryFeatures(d)(rec, httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"where":"1=1"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if !strings.Contains(resp.Error, "service_url or dataset_id") {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestQueryFeaturesMalformedBody(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	QueryFeatures(d)(rec, httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{not json`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQueryFeaturesUpstreamFailure(t *testing.T) {
	fake := newFakeArcGIS()
	fake.set("/Leases/FeatureServer/0/query", http.StatusInternalServerError, `boom`)
	d, _ := newTestDeps(t, fake)

	rec := httptest.NewRecorder()
	QueryFeatures(d)(rec, httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"dataset_id":"leases"}`)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestQueryStatisticsInvalidType(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	QueryStatistics(d)(rec, httptest.NewRequest(http.MethodPost, "/api/statistics",
		strings.NewReader(`{"dataset_id":"leases","field_name":"AREA","statistic_type":"median"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQueryBoundingBoxMissingOrdinate(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	QueryBoundingBox(d)(rec, httptest.NewRequest(http.MethodPost, "/api/bbox",
		strings.NewReader(`{"dataset_id":"leases","xmin":30.9,"ymin":-29.9,"xmax":31.1}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeErrorResponse(t, rec)
	if !strings.Contains(resp.Error, "ymax") {
		t.Errorf("Error = %q, want ymax mentioned", resp.Error)
	}
}

func TestQueryBoundingBoxPassthrough(t *testing.T) {
	fake := newFakeArcGIS()
	const upstream = `{"features":[]}`
	fake.set("/Leases/FeatureServer/0/query", http.StatusOK, upstream)
	d, _ := newTestDeps(t, fake)

	rec := httptest.NewRecorder()
	QueryBoundingBox(d)(rec, httptest.NewRequest(http.MethodPost, "/api/bbox",
		strings.NewReader(`{"dataset_id":"leases","xmin":30.9,"ymin":-29.9,"xmax":31.1,"ymax":-29.7}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != upstream {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLayerFields(t *testing.T) {
	fake := newFakeArcGIS()
	fake.set("/Leases/FeatureServer/0", http.StatusOK,
		`{"name":"Lease parcels","geometryType":"esriGeometryPolygon","fields":[{"name":"ID","type":"esriFieldTypeOID"}]}`)
	d, _ := newTestDeps(t, fake)

	rec := httptest.NewRecorder()
	LayerFields(d)(rec, httptest.NewRequest(http.MethodGet, "/api/fields?dataset_id=leases&layer_id=0", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var schema arcgis.LayerSchema
	if err := json.Unmarshal(rec.Body.Bytes(), &schema); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if schema.LayerName != "Lease parcels" || len(schema.Fields) != 1 {
		t.Errorf("schema = %+v", schema)
	}
}

func TestLayerFieldsInvalidLayerID(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	LayerFields(d)(rec, httptest.NewRequest(http.MethodGet, "/api/fields?dataset_id=leases&layer_id=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAddService(t *testing.T) {
	fake := newFakeArcGIS()
	fake.set("/Roads/FeatureServer", http.StatusOK, `{"serviceDescription":"Road network"}`)
	d, srv := newTestDeps(t, fake)

	body := `{"service_name":"Roads","service_url":"` + srv.URL + `/Roads/FeatureServer"}`
	rec := httptest.NewRecorder()
	AddService(d)(rec, httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp addServiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalDatasets != 2 {
		t.Errorf("TotalDatasets = %d, want 2", resp.TotalDatasets)
	}
}

func TestAddServiceValidation(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	AddService(d)(rec, httptest.NewRequest(http.MethodPost, "/api/services",
		strings.NewReader(`{"service_name":"Roads"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestReload(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	Reload(d)(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first reload status = %d, want 202", rec.Code)
	}

	// Trigger still pending, second request must not queue behind it.
	rec = httptest.NewRecorder()
	Reload(d)(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second reload status = %d, want 429", rec.Code)
	}

	var resp reloadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Triggered || resp.Message != "catalog refresh already pending" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestReadyz(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())

	rec := httptest.NewRecorder()
	Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp readyzResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Ready || resp.LastRefresh == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestReadyzBeforeFirstDiscovery(t *testing.T) {
	client := arcgis.NewClient(nil, time.Second, time.Second, logger.Nop())
	cat := catalog.New(client, catalog.NewRegistry(), "http://unused.invalid", catalog.DefaultTTL, logger.Nop())
	d := deps.Deps{Logger: logger.Nop(), Catalog: cat}

	rec := httptest.NewRecorder()
	Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	d, _ := newTestDeps(t, newFakeArcGIS())
	d.Version = "1.2.3"

	rec := httptest.NewRecorder()
	Healthz(d)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthzResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" {
		t.Errorf("resp = %+v", resp)
	}
}
