package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
)

type errorResponse struct {
	Error     string `json:"error"`
	Operation string `json:"operation"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw passes an upstream JSON payload through untouched.
func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeError maps an error to an HTTP status and renders the uniform
// error envelope.
func writeError(w http.ResponseWriter, operation string, err error) {
	status := http.StatusInternalServerError

	var remoteErr *arcgis.RemoteError
	var serverErr *arcgis.ServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDatasetNotFound):
		status = http.StatusNotFound
	case errors.As(err, &remoteErr), errors.As(err, &serverErr):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Operation: operation,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func invalidNumber(name string) error {
	return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
