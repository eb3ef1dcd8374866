// Package health serves the liveness and readiness endpoints.
//
// /healthz answers 200 while the process is up. /readyz answers 200 once
// startup has finished (models preloaded, transports started) and lists
// the models the cache holds.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Status is the body of both endpoints.
type Status struct {
	Status string   `json:"status"`
	Models []string `json:"models,omitempty"`
}

// Server is a lightweight HTTP server for health probes.
type Server struct {
	port   int
	ready  atomic.Bool
	models func() []string
	server *http.Server
}

// New creates a health server. models reports the loaded model ids and may
// be nil.
func New(port int, models func() []string) *Server {
	return &Server{port: port, models: models}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler returns the probe routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, Status{Status: "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, Status{Status: "not_ready"})
			return
		}
		st := Status{Status: "ok"}
		if s.models != nil {
			st.Models = s.models()
		}
		writeStatus(w, http.StatusOK, st)
	})

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func writeStatus(w http.ResponseWriter, code int, st Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(st)
}
