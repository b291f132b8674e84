package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
)

type datasetsResponse struct {
	Datasets []domain.DatasetRecord `json:"datasets"`
	Total    int                    `json:"total"`
}

// ListDatasets returns every cached dataset in discovery order,
// refreshing the cache first when stale.
func ListDatasets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Catalog.Datasets(r.Context(), false)
		records := snap.Records()
		writeJSON(w, http.StatusOK, datasetsResponse{
			Datasets: records,
			Total:    len(records),
		})
	}
}

// GetDataset returns one dataset by id, falling back to a
// case-insensitive name or title match.
func GetDataset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec, err := d.Catalog.DatasetByID(r.Context(), id)
		if err != nil {
			writeError(w, "get_dataset", err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
