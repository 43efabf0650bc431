package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/byteplug/task-tracker/internal/core/ports"
)

const statusKey = "status:aggregate"

// StatusCache caches the status endpoint's store-wide aggregate so repeated
// probes do not rescan every user and task. Entries expire after a short
// TTL; a miss simply means a fresh scan.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatusCache{client: client, ttl: ttl}
}

// Get returns the cached aggregate, reporting a miss with ok=false.
func (c *StatusCache) Get(ctx context.Context) (*ports.ServiceStatus, bool, error) {
	raw, err := c.client.Get(ctx, statusKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("status cache get: %w", err)
	}

	var status ports.ServiceStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		// A corrupt entry is indistinguishable from a miss for callers.
		return nil, false, nil
	}
	return &status, true, nil
}

// Set stores the aggregate under the cache TTL.
func (c *StatusCache) Set(ctx context.Context, status *ports.ServiceStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("status cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, statusKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("status cache set: %w", err)
	}
	return nil
}
