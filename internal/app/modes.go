package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/platform/scanapi"
	"github.com/alanyoungcy/arbwatch/internal/scheduler"
	"github.com/alanyoungcy/arbwatch/internal/server"
	"github.com/alanyoungcy/arbwatch/internal/server/handler"
	"github.com/alanyoungcy/arbwatch/internal/server/ws"
)

// scanFetcher adapts the scan backend client to the scheduler's Fetcher.
// Fetch failures are fanned out to notification channels before they are
// returned so scan_error subscribers hear about them.
type scanFetcher struct {
	client *scanapi.Client
	params scanapi.ScanParams
	sink   *fanoutSink
}

func (f *scanFetcher) Fetch(ctx context.Context) (domain.ScanResult, error) {
	res, err := f.client.Scan(ctx, f.params)
	if err != nil && f.sink != nil {
		f.sink.reportFailure(ctx, err.Error())
	}
	return res, err
}

// MonitorMode runs the full pipeline: the adaptive refresh loop feeding the
// fanout sink, plus the HTTP/WebSocket dashboard API when server.enabled is
// set. It blocks until the context is cancelled.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	logger := a.logger.With(slog.String("run_mode", "monitor"))

	var hub *ws.Hub
	if a.cfg.Server.Enabled {
		hub = ws.NewHub(deps.SignalBus, a.logger, ws.Config{
			Mode:      a.cfg.Mode,
			StartedAt: time.Now(),
		})
	}

	sink := newFanoutSink(deps, hub, a.cfg.Scan.DefaultBankroll, a.logger)
	fetcher := &scanFetcher{
		client: deps.ScanClient,
		params: scanapi.ScanParams{MinPct: a.cfg.Scan.MinPct, Sports: a.cfg.Scan.Sports},
		sink:   sink,
	}
	sched := scheduler.New(fetcher, sink, a.schedulerConfig(), a.logger)
	a.seedFromCache(ctx, deps, sched)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(ctx) })
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, sched, hub)
	}

	logger.InfoContext(ctx, "monitor mode running",
		slog.Bool("server", a.cfg.Server.Enabled),
		slog.Bool("redis", a.cfg.Redis.Enabled),
	)
	return g.Wait()
}

// ServerMode runs the dashboard API without the automatic refresh loop. The
// view is seeded from the Redis snapshot cache and kept live by a monitor
// process publishing on the signal bus; the manual refresh endpoint still
// works against the backend directly.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	logger := a.logger.With(slog.String("run_mode", "server"))

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now(),
	})

	sink := newFanoutSink(deps, hub, a.cfg.Scan.DefaultBankroll, a.logger)
	fetcher := &scanFetcher{
		client: deps.ScanClient,
		params: scanapi.ScanParams{MinPct: a.cfg.Scan.MinPct, Sports: a.cfg.Scan.Sports},
		sink:   sink,
	}
	sched := scheduler.New(fetcher, sink, a.schedulerConfig(), a.logger)
	a.seedFromCache(ctx, deps, sched)

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, sched, hub)

	logger.InfoContext(ctx, "server mode running",
		slog.Int("port", a.cfg.Server.Port),
		slog.Bool("redis", a.cfg.Redis.Enabled),
	)
	return g.Wait()
}

// ScanMode performs one synchronous refresh, prints the resulting snapshot
// as JSON on stdout, and exits. Notifications and the alert stream still
// fire for threshold crossings.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	sink := newFanoutSink(deps, nil, a.cfg.Scan.DefaultBankroll, a.logger)
	fetcher := &scanFetcher{
		client: deps.ScanClient,
		params: scanapi.ScanParams{MinPct: a.cfg.Scan.MinPct, Sports: a.cfg.Scan.Sports},
		sink:   sink,
	}
	sched := scheduler.New(fetcher, sink, a.schedulerConfig(), a.logger)

	snap, err := sched.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("scan: encode snapshot: %w", err)
	}
	return nil
}

// startHTTPServer registers the hub and HTTP server goroutines on the group:
// one to run the hub, one to listen, and one that shuts the listener down
// when the context ends.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, sched *scheduler.Scheduler, hub *ws.Hub) {
	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Status:        handler.NewStatusHandler(sched, a.cfg.Mode),
		Opportunities: handler.NewOpportunityHandler(sched, a.logger),
		Detail:        handler.NewDetailHandler(deps.ScanClient, a.logger),
		Config:        handler.NewConfigHandler(deps.ScanClient, a.logger),
		Alerts:        handler.NewAlertsHandler(deps.SignalBus, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		AuthToken:   a.cfg.Server.AuthToken,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return srv.Start() })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// schedulerConfig maps the file configuration onto the scheduler's knobs.
func (a *App) schedulerConfig() scheduler.Config {
	return scheduler.Config{
		Cadence: scheduler.Cadence{
			Location:         a.cfg.Location(),
			ExtendedInterval: a.cfg.Cadence.ExtendedInterval.Duration,
		},
		Bankroll:       a.cfg.Scan.DefaultBankroll,
		NotifyAbovePct: a.cfg.Scan.NotifyAbovePct,
		Criteria: domain.FilterCriteria{
			Sports:      a.cfg.Filters.Sports,
			Platforms:   a.cfg.Filters.Platforms,
			MarketTypes: a.cfg.Filters.MarketTypes,
			IncludeLive: a.cfg.Filters.IncludeLive,
			MinNetPct:   a.cfg.Filters.MinNetPct,
		},
	}
}

// seedFromCache warm-starts the scheduler from the last cached snapshot so
// the dashboard is not empty while the first refresh runs.
func (a *App) seedFromCache(ctx context.Context, deps *Dependencies, sched *scheduler.Scheduler) {
	if deps.SnapshotCache == nil {
		return
	}
	raw, err := deps.SnapshotCache.GetSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.WarnContext(ctx, "snapshot cache read failed", slog.Any("error", err))
		}
		return
	}
	var snap scheduler.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		a.logger.WarnContext(ctx, "cached snapshot unreadable", slog.Any("error", err))
		return
	}
	sched.Seed(snap)
	a.logger.InfoContext(ctx, "seeded view from cached snapshot",
		slog.String("cycle_id", snap.CycleID),
		slog.Time("refreshed_at", snap.RefreshedAt),
		slog.Int("rows", len(snap.Rows)),
	)
}
