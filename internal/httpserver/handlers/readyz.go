package handlers

import (
	"net/http"
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready       bool   `json:"ready"`
	LastRefresh string `json:"last_refresh,omitempty"`
}

// Readyz reports ready once the first discovery pass has completed.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last := d.Catalog.LastRefresh()
		resp := readyzResponse{Ready: !last.IsZero()}
		if resp.Ready {
			resp.LastRefresh = last.UTC().Format(time.RFC3339)
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
