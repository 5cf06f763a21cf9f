package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alanyoungcy/arbwatch/internal/arbitrage"
	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/notify"
	"github.com/alanyoungcy/arbwatch/internal/scheduler"
	"github.com/alanyoungcy/arbwatch/internal/server/ws"
)

// snapshotTTL bounds how long a cached snapshot survives a dead publisher;
// a detached server falls back to an empty view once it expires.
const snapshotTTL = 10 * time.Minute

// wsEvent is the envelope every dashboard push uses.
type wsEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// alertRecord is the durable form of one threshold crossing, kept on the
// bus stream for the /api/alerts history endpoint.
type alertRecord struct {
	DetectedAt  time.Time          `json:"detected_at"`
	CycleID     string             `json:"cycle_id"`
	Opportunity domain.Opportunity `json:"opportunity"`
}

// fanoutSink distributes each completed refresh cycle to every configured
// consumer: the websocket hub (directly, or via the Redis bus so detached
// servers see it too), the snapshot cache, and external notifications.
// Every leg is best-effort; a slow or failing consumer never blocks the
// scheduler.
type fanoutSink struct {
	bus      domain.SignalBus     // nil without Redis
	cache    domain.SnapshotCache // nil without Redis
	hub      *ws.Hub              // nil in scan mode
	notifier *notify.Notifier     // nil without notify channels
	bankroll float64
	logger   *slog.Logger
}

func newFanoutSink(deps *Dependencies, hub *ws.Hub, bankroll float64, logger *slog.Logger) *fanoutSink {
	return &fanoutSink{
		bus:      deps.SignalBus,
		cache:    deps.SnapshotCache,
		hub:      hub,
		notifier: deps.Notifier,
		bankroll: bankroll,
		logger:   logger.With(slog.String("component", "sink")),
	}
}

// Publish implements scheduler.Sink.
func (s *fanoutSink) Publish(ctx context.Context, snap scheduler.Snapshot, alerts []domain.Opportunity) {
	s.publishSnapshot(ctx, snap)
	for _, o := range alerts {
		s.publishAlert(ctx, snap.CycleID, o)
	}
}

func (s *fanoutSink) publishSnapshot(ctx context.Context, snap scheduler.Snapshot) {
	event, err := json.Marshal(wsEvent{Type: "refresh", Payload: snap})
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal snapshot event", slog.Any("error", err))
		return
	}

	if s.bus != nil {
		// The hub subscribes to the bus channel, so publishing here reaches
		// local and remote dashboards alike.
		if err := s.bus.Publish(ctx, domain.ChannelRefresh, event); err != nil {
			s.logger.WarnContext(ctx, "publish refresh event", slog.Any("error", err))
		}
	} else if s.hub != nil {
		s.hub.Broadcast(domain.ChannelRefresh, event)
	}

	if s.cache != nil {
		raw, err := json.Marshal(snap)
		if err == nil {
			err = s.cache.SetSnapshot(ctx, raw, snapshotTTL)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "cache snapshot", slog.Any("error", err))
		}
	}
}

func (s *fanoutSink) publishAlert(ctx context.Context, cycleID string, o domain.Opportunity) {
	event, err := json.Marshal(wsEvent{Type: notify.EventNewArb, Payload: o})
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal alert event", slog.Any("error", err))
		return
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, domain.ChannelAlerts, event); err != nil {
			s.logger.WarnContext(ctx, "publish alert event", slog.Any("error", err))
		}
		record, err := json.Marshal(alertRecord{
			DetectedAt:  time.Now().UTC(),
			CycleID:     cycleID,
			Opportunity: o,
		})
		if err == nil {
			err = s.bus.StreamAppend(ctx, domain.AlertStream, record)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "append alert history", slog.Any("error", err))
		}
	} else if s.hub != nil {
		s.hub.Broadcast(domain.ChannelAlerts, event)
	}

	if s.notifier != nil {
		var stakes *arbitrage.Stakes
		if st, err := arbitrage.AllocateFor(o, s.bankroll); err == nil {
			stakes = &st
		}
		if err := s.notifier.OpportunityFound(ctx, o, stakes); err != nil {
			s.logger.WarnContext(ctx, "send alert notification", slog.Any("error", err))
		}
	}
}

// reportFailure pushes a scan failure to notification channels when the
// configured events include scan_error.
func (s *fanoutSink) reportFailure(ctx context.Context, reason string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ScanFailed(ctx, reason); err != nil {
		s.logger.WarnContext(ctx, "send failure notification", slog.Any("error", err))
	}
}
