// Package cache stores storage-phase results of the active alert listing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonpan30062/newsaferoute/internal/config"
	"github.com/jonpan30062/newsaferoute/internal/models"
)

// Generation identifies one cache epoch. Invalidate starts a new one.
type Generation int64

// AlertCache caches alert rows per filter. Only the storage-phase result is
// cached; callers must still apply date-window checks on every read.
type AlertCache interface {
	// Get returns the cached rows, whether there was a hit, and the
	// generation the lookup ran in. After a miss, rows loaded from storage
	// are stored with Set under that same generation.
	Get(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, Generation, bool, error)
	// Set stores rows under gen. Rows read before an Invalidate land in
	// the superseded generation and are never served.
	Set(ctx context.Context, gen Generation, filter models.AlertFilter, alerts []models.SafetyAlert) error
	// Invalidate drops every cached filter result.
	Invalidate(ctx context.Context) error
}

const (
	keyPrefix     = "alerts:active"
	generationKey = keyPrefix + ":gen"
)

// RedisAlertCache keys entries by a generation counter so that Invalidate
// is a single INCR instead of a key scan. Old generations expire by TTL.
type RedisAlertCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// NewRedisAlertCache wraps an existing client.
func NewRedisAlertCache(client *goredis.Client, ttl time.Duration) *RedisAlertCache {
	return &RedisAlertCache{client: client, ttl: ttl}
}

func (c *RedisAlertCache) generation(ctx context.Context) (Generation, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return Generation(gen), err
}

func entryKey(gen Generation, filter models.AlertFilter) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, gen, filter.CacheKey())
}

func (c *RedisAlertCache) Get(ctx context.Context, filter models.AlertFilter) ([]models.SafetyAlert, Generation, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read cache generation: %w", err)
	}

	data, err := c.client.Get(ctx, entryKey(gen, filter)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, gen, false, nil
		}
		return nil, gen, false, fmt.Errorf("read cached alerts: %w", err)
	}

	var alerts []models.SafetyAlert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, gen, false, fmt.Errorf("decode cached alerts: %w", err)
	}
	return alerts, gen, true, nil
}

func (c *RedisAlertCache) Set(ctx context.Context, gen Generation, filter models.AlertFilter, alerts []models.SafetyAlert) error {
	b, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	return c.client.Set(ctx, entryKey(gen, filter), b, c.ttl).Err()
}

func (c *RedisAlertCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

// Ping reports whether redis is reachable. Used by the readiness check.
func (c *RedisAlertCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, models.AlertFilter) ([]models.SafetyAlert, Generation, bool, error) {
	return nil, 0, false, nil
}

func (Noop) Set(context.Context, Generation, models.AlertFilter, []models.SafetyAlert) error {
	return nil
}

func (Noop) Invalidate(context.Context) error { return nil }
