// Package api provides the HTTP API for the Daybreak planning service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	identityDomain "github.com/daybreakhq/daybreak/internal/identity/domain"
)

// Server is the Daybreak HTTP server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	handler *PlanningHandler
	users   identityDomain.UserRepository
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates the API server.
func NewServer(cfg ServerConfig, handler *PlanningHandler, users identityDomain.UserRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		handler: handler,
		users:   users,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingMiddleware(logger, s.mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(s.users, s.logger, h)
	}

	s.mux.Handle("POST /api/v1/planning/plan", authed(s.handler.GeneratePlan))
	s.mux.Handle("GET /api/v1/planning/plan", authed(s.handler.GetPlan))
	s.mux.Handle("GET /api/v1/planning/calendar", authed(s.handler.GetCalendar))
	s.mux.Handle("PATCH /api/v1/planning/item/{itemID}", authed(s.handler.MoveItem))
	s.mux.Handle("DELETE /api/v1/planning/item/{itemID}", authed(s.handler.RemoveItem))

	s.mux.Handle("POST /api/v1/feedback", authed(s.handler.RecordFeedback))
	s.mux.Handle("GET /api/v1/feedback", authed(s.handler.ListFeedback))
}

// Handler returns the full HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting Daybreak API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down Daybreak API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response with a detail message.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, DetailOut{Detail: detail})
}
