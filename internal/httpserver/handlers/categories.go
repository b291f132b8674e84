package handlers

import (
	"net/http"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
)

// Categories returns the category and service-type overview of the cache.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Catalog.Overview(r.Context()))
	}
}
