package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/arbwatch/internal/cache/redis"
	"github.com/alanyoungcy/arbwatch/internal/config"
	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/notify"
	"github.com/alanyoungcy/arbwatch/internal/platform/scanapi"
)

// Dependencies holds every wired component the operating modes pick from.
// Optional components (Redis-backed ones, the notifier) are nil when their
// configuration section is disabled or empty.
type Dependencies struct {
	ScanClient *scanapi.Client

	// Redis-backed components. All nil when redis.enabled is false.
	SignalBus     domain.SignalBus
	SnapshotCache domain.SnapshotCache
	RateLimiter   domain.RateLimiter

	// Notifier is nil when no notification channel is configured.
	Notifier *notify.Notifier
}

// Wire constructs all dependencies from the configuration. It returns the
// dependencies, a cleanup function that releases every acquired resource in
// reverse order, and an error if any component fails to initialize. On error
// the partially acquired resources are already released.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		ScanClient: scanapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.ApiKey),
	}

	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() {
			if cerr := rc.Close(); cerr != nil {
				logger.Warn("closing redis client", slog.Any("error", cerr))
			}
		})

		deps.SignalBus = redis.NewSignalBus(rc)
		deps.SnapshotCache = redis.NewSnapshotCache(rc)
		deps.RateLimiter = redis.NewRateLimiter(rc)
	}

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	return deps, cleanup, nil
}
