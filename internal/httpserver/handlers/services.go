package handlers

import (
	"net/http"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

type addServiceRequest struct {
	ServiceName string `json:"service_name"`
	ServiceURL  string `json:"service_url"`
}

type addServiceResponse struct {
	ServiceName   string `json:"service_name"`
	ServiceURL    string `json:"service_url"`
	TotalDatasets int    `json:"total_datasets"`
}

// AddService registers a curated service endpoint and re-discovers so the
// new service is queryable on return.
func AddService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addServiceRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, "add_service", err)
			return
		}

		total, err := d.Catalog.RegisterService(r.Context(), req.ServiceName, req.ServiceURL)
		if err != nil {
			writeError(w, "add_service", err)
			return
		}

		d.Logger.Info("service registered",
			logger.String("name", req.ServiceName),
			logger.String("url", req.ServiceURL))

		writeJSON(w, http.StatusOK, addServiceResponse{
			ServiceName:   req.ServiceName,
			ServiceURL:    req.ServiceURL,
			TotalDatasets: total,
		})
	}
}
