package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// RedisStatusCache caches the subscription-status flag in Redis. The cache is
// best effort: a Redis failure degrades to a ledger read, never to a wrong
// answer.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStatusCache creates a cache with the given entry TTL.
func NewRedisStatusCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStatusCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStatusCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

var _ queries.StatusCache = (*RedisStatusCache)(nil)

// Get returns the cached active flag and whether an entry was present.
func (c *RedisStatusCache) Get(ctx context.Context, subscriber sharedDomain.Identity, planID int64) (bool, bool) {
	value, err := c.client.Get(ctx, statusKey(subscriber, planID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("status cache read failed", "error", err)
		}
		return false, false
	}
	return value == "1", true
}

// Set records the active flag for a pair.
func (c *RedisStatusCache) Set(ctx context.Context, subscriber sharedDomain.Identity, planID int64, active bool) {
	value := "0"
	if active {
		value = "1"
	}
	if err := c.client.Set(ctx, statusKey(subscriber, planID), value, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write failed", "error", err)
	}
}

func statusKey(subscriber sharedDomain.Identity, planID int64) string {
	return fmt.Sprintf("billing:status:%s:%d", subscriber.String(), planID)
}
