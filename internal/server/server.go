// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// ReadyTimeout bounds the Ollama probe behind /readyz.
	ReadyTimeout = 2 * time.Second

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 5 * time.Second
)

// Pinger reports whether Ollama is reachable. *registry.Registry satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the telemetry HTTP endpoint.
type Server struct {
	addr    string
	metrics *telemetry.Metrics
	pinger  Pinger
	log     zerolog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a Server bound to addr. pinger may be nil, in which case
// /readyz always reports ready.
func New(addr string, metrics *telemetry.Metrics, pinger Pinger, logger zerolog.Logger) *Server {
	return &Server{
		addr:    addr,
		metrics: metrics,
		pinger:  pinger,
		log:     logger.With().Str("component", "server").Logger(),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(s.log))
	r.Use(LoggingMiddleware(s.log))

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ReadyTimeout)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start binds the listener and serves in the background. It returns once
// the address is bound, so a port conflict is reported to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("telemetry endpoint listening")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("telemetry endpoint stopped")
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.log.Info().Msg("telemetry endpoint shutting down")
	return srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
