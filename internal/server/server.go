// Package server provides the HTTP transport of the gesture components.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robocomp/gesturecomp/internal/gesture"
	"github.com/robocomp/gesturecomp/internal/log"
	"github.com/robocomp/gesturecomp/internal/server/api"
)

// ShutdownTimeout bounds how long in-flight requests may take on shutdown.
const ShutdownTimeout = 5 * time.Second

// Config holds the server configuration. Routes are registered only for
// the parts that are set.
type Config struct {
	// Recognizer serves getGesture and the live results feed.
	Recognizer gesture.Recognizer
	// Log records served recognitions and backs /api/recognitions.
	Log api.RecognitionLog
	// Monitor backs the CommonBehavior routes.
	Monitor api.Monitor
	// Frames backs the MJPEG camera preview.
	Frames FrameSource
	Logger *logrus.Entry
}

// Server represents the HTTP server of a gesture component.
type Server struct {
	config  Config
	mux     *http.ServeMux
	start   time.Time
	results *ResultsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = log.Component("server")
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Recognizer != nil {
		s.results = NewResultsHandler(s.config.Logger)
		s.mux.Handle(gesture.Path, api.NewGestureHandler(
			s.config.Recognizer, s.config.Log, s.results.Publish, s.config.Logger))
		s.mux.Handle("/api/results", s.results)
	}

	if s.config.Log != nil {
		s.mux.Handle("/api/recognitions", api.NewRecognitionsHandler(s.config.Log))
	}

	if s.config.Monitor != nil {
		s.mux.Handle("/api/behavior/", api.NewBehaviorHandler(s.config.Monitor))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Results returns the live results feed, or nil when no recognizer is served.
func (s *Server) Results() *ResultsHandler {
	return s.results
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. It returns nil after a shutdown triggered by ctx.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.results != nil {
		s.results.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Streaming clients never go idle
		s.config.Logger.WithError(err).Warn("graceful shutdown timed out, closing connections")
		srv.Close()
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
