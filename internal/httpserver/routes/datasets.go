package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/handlers"
)

func init() { Register(registerDatasets) }

func registerDatasets(r chi.Router, d deps.Deps) {
	r.Get("/api/datasets", handlers.ListDatasets(d))
	r.Get("/api/datasets/{id}", handlers.GetDataset(d))
	r.Get("/api/search", handlers.SearchDatasets(d))
	r.Get("/api/categories", handlers.Categories(d))
}
