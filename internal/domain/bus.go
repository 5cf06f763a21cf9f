package domain

import (
	"context"
	"time"
)

// Bus channel and stream names shared by the publisher and the dashboard
// fanout.
const (
	ChannelRefresh = "arbwatch:refresh"
	ChannelAlerts  = "arbwatch:alert"
	AlertStream    = "arbwatch:alerts"
)

// StreamMessage is one entry read from a durable bus stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus distributes refresh-cycle events: ephemeral fanout over Pub/Sub
// for live dashboard updates, plus a trimmed stream that keeps a short alert
// history.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// SnapshotCache holds the latest serialized display snapshot so a detached
// server process can serve it without its own scheduler.
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, payload []byte, ttl time.Duration) error
	GetSnapshot(ctx context.Context) ([]byte, error)
}

// RateLimiter bounds how often a keyed action may run, e.g. manual refresh
// triggers per client.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
