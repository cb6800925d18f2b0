// Package cache provides a Redis read-through layer over the hierarchy
// store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aurumlife/aurum/internal/prioritization/domain/hierarchy"
)

// DefaultTTL bounds how stale a cached hierarchy entry can get. Importance
// changes trigger rescoring anyway, so short staleness is acceptable.
const DefaultTTL = 5 * time.Minute

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisHierarchyCache decorates a hierarchy.Repository with a read-through
// Redis cache. Cache failures fall through to the store; the cache can never
// make a lookup fail.
type RedisHierarchyCache struct {
	inner  hierarchy.Repository
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisHierarchyCache creates a new cache decorator.
func NewRedisHierarchyCache(inner hierarchy.Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisHierarchyCache {
	return newRedisHierarchyCache(inner, client, ttl, logger)
}

func newRedisHierarchyCache(inner hierarchy.Repository, client redisClient, ttl time.Duration, logger *slog.Logger) *RedisHierarchyCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisHierarchyCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(collection string, id uuid.UUID) string {
	return "aurum:hier:" + collection + ":" + id.String()
}

func (c *RedisHierarchyCache) lookup(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.DebugContext(ctx, "hierarchy cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.DebugContext(ctx, "hierarchy cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisHierarchyCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "hierarchy cache write failed", "key", key, "error", err)
	}
}

// FindProject retrieves a project, preferring the cache.
func (c *RedisHierarchyCache) FindProject(ctx context.Context, id uuid.UUID) (*hierarchy.Project, error) {
	key := cacheKey("projects", id)

	var cached hierarchy.Project
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	project, err := c.inner.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, project)
	return project, nil
}

// FindArea retrieves an area, preferring the cache.
func (c *RedisHierarchyCache) FindArea(ctx context.Context, id uuid.UUID) (*hierarchy.Area, error) {
	key := cacheKey("areas", id)

	var cached hierarchy.Area
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	area, err := c.inner.FindArea(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, area)
	return area, nil
}

// FindPillar retrieves a pillar, preferring the cache.
func (c *RedisHierarchyCache) FindPillar(ctx context.Context, id uuid.UUID) (*hierarchy.Pillar, error) {
	key := cacheKey("pillars", id)

	var cached hierarchy.Pillar
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	pillar, err := c.inner.FindPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, pillar)
	return pillar, nil
}
