// Package api provides HTTP API handlers for the gesture components.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/robocomp/gesturecomp/internal/types"
)

// RecognitionLog persists served recognitions. Implemented by the SQLite
// store and the PostgreSQL database.
type RecognitionLog interface {
	Record(ctx context.Context, r *types.Recognition) error
	Recent(ctx context.Context, limit int) ([]types.Recognition, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
