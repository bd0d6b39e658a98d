package settings

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

const cacheKeyPrefix = "settings:"

// Cache fronts the settings store with a redis cache. Reads hit redis first
// and fall back to Postgres on a miss; writes go through to the store and
// invalidate the cached value. A nil redis client degrades to direct reads.
type Cache struct {
	store  *Store
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache builds a settings cache with the given TTL.
func NewCache(store *Store, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{store: store, redis: redisClient, ttl: ttl, logger: logger}
}

// Get returns the value for a key, from cache when warm.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if c.redis != nil {
		cached, err := c.redis.Get(ctx, cacheKeyPrefix+key).Result()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			c.logger.Warn("settings cache read failed, falling back to store", "key", key, "error", err)
		}
	}

	value, err := c.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKeyPrefix+key, value, c.ttl).Err(); err != nil {
			c.logger.Warn("settings cache write failed", "key", key, "error", err)
		}
	}
	return value, nil
}

// Float returns the value parsed as a float, or the fallback when the key is
// missing or malformed.
func (c *Cache) Float(ctx context.Context, key string, fallback float64) float64 {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Warn("setting is not numeric", "key", key, "value", raw)
		return fallback
	}
	return value
}

// Set writes through to the store and invalidates the cached value.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.store.Set(ctx, key, value); err != nil {
		return err
	}
	return c.Invalidate(ctx, key)
}

// Invalidate drops a key from the cache so the next read refetches.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, cacheKeyPrefix+key).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", "key", key, "error", err)
		return err
	}
	return nil
}
