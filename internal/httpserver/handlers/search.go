package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

type searchResponse struct {
	Query    string                 `json:"query"`
	Category string                 `json:"category,omitempty"`
	Results  []domain.DatasetRecord `json:"results"`
	Total    int                    `json:"total"`
}

// SearchDatasets filters cached datasets by a substring query (?q=) and
// an optional category (?category=), capped at ?limit= results.
func SearchDatasets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		category := strings.TrimSpace(r.URL.Query().Get("category"))

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, "search_datasets", invalidNumber("limit"))
				return
			}
			limit = n
		}

		results := d.Catalog.Search(r.Context(), query, category, limit)
		d.Logger.Debug("dataset search",
			logger.String("query", query),
			logger.String("category", category),
			logger.Int("results", len(results)))

		writeJSON(w, http.StatusOK, searchResponse{
			Query:    query,
			Category: category,
			Results:  results,
			Total:    len(results),
		})
	}
}
