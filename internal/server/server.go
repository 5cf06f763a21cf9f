// Package server is the HTTP + WebSocket API surface of the arbwatch
// monitor: the opportunity snapshot, filter/sort/refresh controls, the
// detail deep-dive, and the live dashboard feed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/server/handler"
	"github.com/alanyoungcy/arbwatch/internal/server/middleware"
	"github.com/alanyoungcy/arbwatch/internal/server/ws"
)

// refreshRateLimit bounds manual refresh triggers per client.
const (
	refreshRateLimit  = 6
	refreshRateWindow = time.Minute
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	AuthToken   string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health        *handler.HealthHandler
	Status        *handler.StatusHandler
	Opportunities *handler.OpportunityHandler
	Detail        *handler.DetailHandler
	Config        *handler.ConfigHandler
	Alerts        *handler.AlertsHandler
}

// Server is the headless HTTP + WebSocket API server for the monitor.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth, refresh rate limiting) and
// attaches the WebSocket hub. limiter may be nil, which disables rate
// limiting on the refresh endpoint.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Scheduler and source status.
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)

	// Opportunity snapshot and view controls.
	mux.HandleFunc("GET /api/opportunities", handlers.Opportunities.List)
	mux.HandleFunc("PUT /api/filters", handlers.Opportunities.SetFilters)
	mux.HandleFunc("PUT /api/sort", handlers.Opportunities.SetSort)
	mux.HandleFunc("PUT /api/bankroll", handlers.Opportunities.SetBankroll)

	// Manual refresh, rate limited per client when a limiter is wired.
	var refresh http.Handler = http.HandlerFunc(handlers.Opportunities.Refresh)
	if limiter != nil {
		refresh = middleware.RateLimit(limiter, refreshRateLimit, refreshRateWindow)(refresh)
	}
	mux.Handle("POST /api/refresh", refresh)

	// Deep-dive and backend config passthrough.
	mux.HandleFunc("GET /api/detail", handlers.Detail.GetDetail)
	mux.HandleFunc("GET /api/config", handlers.Config.GetConfig)
	mux.HandleFunc("PUT /api/config", handlers.Config.UpdateConfig)

	// Alert history.
	mux.HandleFunc("GET /api/alerts", handlers.Alerts.ListRecent)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if AuthToken is empty).
	h = middleware.Auth(cfg.AuthToken)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
