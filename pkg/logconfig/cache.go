package logconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/mkallio/guildlog/pkg/event"
)

const (
	// cacheTTL bounds staleness when an invalidation is lost (e.g. redis
	// restart between write and delete).
	cacheTTL = 30 * time.Second

	// redisKeyPrefix is the prefix for all config cache keys in Redis.
	redisKeyPrefix = "logconfig:guild:"

	// notFoundSentinel marks a negative cache entry for unconfigured guilds.
	notFoundSentinel = "absent"
)

// CacheMetrics holds the counters the cache increments.
type CacheMetrics struct {
	Hits   prometheus.Counter
	Misses prometheus.Counter
}

// Cache is a Redis read-through cache in front of the Store. Every write
// for a guild deletes that guild's cache entry, so reads reflect the latest
// committed write within one round trip. Redis failures fall through to the
// store; the cache is never a correctness dependency.
type Cache struct {
	store   *Store
	rdb     *redis.Client
	logger  *slog.Logger
	metrics CacheMetrics
}

// NewCache creates a Cache wrapping the given store.
func NewCache(store *Store, rdb *redis.Client, logger *slog.Logger, metrics CacheMetrics) *Cache {
	return &Cache{store: store, rdb: rdb, logger: logger, metrics: metrics}
}

// redisKey builds the cache key for a guild.
func redisKey(guildID uint64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, guildID)
}

// Get returns the guild's config, preferring the Redis copy. Both present
// and absent results are cached.
func (c *Cache) Get(ctx context.Context, guildID uint64) (*GuildConfig, error) {
	key := redisKey(guildID)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if val == notFoundSentinel {
			c.hit()
			return nil, ErrNotFound
		}
		var cfg GuildConfig
		if jsonErr := json.Unmarshal([]byte(val), &cfg); jsonErr == nil {
			c.hit()
			return &cfg, nil
		}
		c.logger.Warn("invalid config cache entry, falling back to store", "key", key)
	case err != redis.Nil:
		c.logger.Warn("redis config lookup failed, falling back to store", "error", err)
	}

	c.miss()

	cfg, err := c.store.Get(ctx, guildID)
	if err != nil {
		if err == ErrNotFound {
			c.cacheSet(ctx, key, notFoundSentinel)
		}
		return nil, err
	}

	if raw, jsonErr := json.Marshal(cfg); jsonErr == nil {
		c.cacheSet(ctx, key, string(raw))
	}
	return cfg, nil
}

// SetChannel writes through to the store and invalidates the guild's entry.
func (c *Cache) SetChannel(ctx context.Context, guildID uint64, slot event.Slot, channelID uint64) error {
	if err := c.store.SetChannel(ctx, guildID, slot, channelID); err != nil {
		return err
	}
	c.Invalidate(ctx, guildID)
	return nil
}

// Toggle writes through to the store and invalidates the guild's entry.
func (c *Cache) Toggle(ctx context.Context, guildID uint64) (bool, error) {
	enabled, err := c.store.Toggle(ctx, guildID)
	if err != nil {
		return false, err
	}
	c.Invalidate(ctx, guildID)
	return enabled, nil
}

// Invalidate drops the cached entry for a guild.
func (c *Cache) Invalidate(ctx context.Context, guildID uint64) {
	key := redisKey(guildID)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("failed to invalidate config cache", "error", err, "key", key)
	}
}

func (c *Cache) cacheSet(ctx context.Context, key, val string) {
	if err := c.rdb.Set(ctx, key, val, cacheTTL).Err(); err != nil {
		c.logger.Warn("failed to set config cache", "error", err, "key", key)
	}
}

func (c *Cache) hit() {
	if c.metrics.Hits != nil {
		c.metrics.Hits.Inc()
	}
}

func (c *Cache) miss() {
	if c.metrics.Misses != nil {
		c.metrics.Misses.Inc()
	}
}
