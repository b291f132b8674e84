package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/handlers"
)

func init() { Register(registerQuery) }

func registerQuery(r chi.Router, d deps.Deps) {
	r.Post("/api/query", handlers.QueryFeatures(d))
	r.Post("/api/statistics", handlers.QueryStatistics(d))
	r.Post("/api/bbox", handlers.QueryBoundingBox(d))
	r.Get("/api/fields", handlers.LayerFields(d))
}
