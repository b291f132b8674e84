package handlers

import (
	"net/http"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/httpserver/deps"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload triggers an out-of-band catalog refresh on the background
// refresher. A second request while a trigger is still pending is
// rejected rather than queued.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual catalog refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{
				Triggered: true,
				Message:   "catalog refresh triggered",
			})
		default:
			d.Logger.Warn("catalog refresh already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{
				Triggered: false,
				Message:   "catalog refresh already pending",
			})
		}
	}
}
