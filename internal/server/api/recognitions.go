package api

import (
	"net/http"
	"strconv"

	"github.com/robocomp/gesturecomp/internal/types"
)

// DefaultRecentLimit is the number of recognitions listed without ?limit.
const DefaultRecentLimit = 50

// RecognitionsHandler lists recently served recognitions.
type RecognitionsHandler struct {
	log RecognitionLog
}

// NewRecognitionsHandler creates a RecognitionsHandler reading from log.
func NewRecognitionsHandler(log RecognitionLog) *RecognitionsHandler {
	return &RecognitionsHandler{log: log}
}

type listRecognitionsResponse struct {
	Recognitions []types.Recognition `json:"recognitions"`
}

// ServeHTTP handles GET /api/recognitions?limit=N.
func (h *RecognitionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	recs, err := h.log.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}

	response := listRecognitionsResponse{
		Recognitions: make([]types.Recognition, 0, len(recs)),
	}
	response.Recognitions = append(response.Recognitions, recs...)

	writeJSON(w, http.StatusOK, response)
}
