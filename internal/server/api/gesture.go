package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/types"
)

// MaxVideoBytes bounds the size of a getGesture request body.
const MaxVideoBytes = 512 << 20

// GestureHandler serves getGesture over HTTP.
type GestureHandler struct {
	recognizer gesture.Recognizer
	log        RecognitionLog
	notify     func(types.Recognition)
	logger     *logrus.Entry
	now        func() time.Time
}

// NewGestureHandler creates a GestureHandler. log and notify may be nil.
func NewGestureHandler(rec gesture.Recognizer, log RecognitionLog, notify func(types.Recognition), logger *logrus.Entry) *GestureHandler {
	return &GestureHandler{
		recognizer: rec,
		log:        log,
		notify:     notify,
		logger:     logger,
		now:        time.Now,
	}
}

// ServeHTTP handles POST /api/gesture.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var video gesture.Video
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxVideoBytes)).Decode(&video); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Video too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := video.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := h.now()
	result, err := h.recognizer.GetGesture(r.Context(), &video)
	if err != nil {
		h.logger.WithError(err).WithField("frames", video.NumFrames).Error("recognizer failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rec := types.Recognition{
		ID:           uuid.New().String(),
		GestureIndex: result.GestureIndex,
		GestureProb:  result.GestureProb,
		NumFrames:    video.NumFrames,
		Height:       video.Height,
		Width:        video.Width,
		Depth:        video.Depth,
		LatencyMs:    h.now().Sub(start).Milliseconds(),
		CreatedAt:    h.now(),
	}

	h.logger.WithFields(logrus.Fields{
		"id":          rec.ID,
		"frames":      rec.NumFrames,
		"gesture":     rec.GestureIndex,
		"probability": rec.GestureProb,
		"latency_ms":  rec.LatencyMs,
	}).Info("gesture served")

	if h.log != nil {
		if err := h.log.Record(r.Context(), &rec); err != nil {
			h.logger.WithError(err).WithField("id", rec.ID).Warn("failed to record recognition")
		}
	}
	if h.notify != nil {
		h.notify(rec)
	}

	writeJSON(w, http.StatusOK, result)
}
