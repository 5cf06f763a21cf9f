// Package app provides the top-level application lifecycle management for
// arbwatch. It wires together all dependencies (the scan backend client,
// Redis cache and signal bus, notifications, the scheduler, and the HTTP
// server) and starts the appropriate goroutines based on the configured
// operating mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/arbwatch/internal/config"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, starts the corresponding goroutines, and blocks until the
// context is cancelled. On return it runs all registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	a.seedBackendDefaults(ctx, deps)

	mode := strings.ToLower(a.cfg.Mode)
	switch mode {
	case "monitor":
		return a.MonitorMode(ctx, deps)
	case "server":
		return a.ServerMode(ctx, deps)
	case "scan":
		return a.ScanMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// seedBackendDefaults fetches the backend's config blob once and lets it
// fill the tunables the operator left at their built-in defaults. An
// unreachable backend is not fatal; local configuration stands.
func (a *App) seedBackendDefaults(ctx context.Context, deps *Dependencies) {
	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	values, err := deps.ScanClient.GetConfig(fetchCtx)
	if err != nil {
		a.logger.WarnContext(ctx, "backend config unavailable, keeping local defaults",
			slog.Any("error", err),
		)
		return
	}

	a.cfg.ApplyBackendDefaults(values)
	a.logger.InfoContext(ctx, "applied backend config defaults",
		slog.Int("keys", len(values)),
		slog.Float64("notify_above_pct", a.cfg.Scan.NotifyAbovePct),
		slog.Duration("extended_interval", a.cfg.Cadence.ExtendedInterval.Duration),
	)
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
