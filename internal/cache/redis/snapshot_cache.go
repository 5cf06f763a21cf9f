package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// snapshotKey holds the latest serialized display snapshot.
const snapshotKey = "arbwatch:snapshot"

// SnapshotCache implements domain.SnapshotCache using a single Redis string
// key with a TTL, so a detached server process can serve the monitor's latest
// snapshot and stale data ages out on its own.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

// SetSnapshot stores the serialized snapshot with the given TTL.
func (sc *SnapshotCache) SetSnapshot(ctx context.Context, payload []byte, ttl time.Duration) error {
	if err := sc.rdb.Set(ctx, snapshotKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the latest serialized snapshot, or domain.ErrNotFound
// when none has been stored (or the last one expired).
func (sc *SnapshotCache) GetSnapshot(ctx context.Context) ([]byte, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get snapshot: %w", err)
	}
	return data, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
