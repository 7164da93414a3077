package matcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reco-workers/internal/common/database"
)

var ErrCacheMiss = errors.New("match cache miss")

// Cache stores positive matches only.
type Cache interface {
	Get(ctx context.Context, key string) (*Match, error)
	Set(ctx context.Context, key string, m *Match) error
}

func cacheKey(q Query) string {
	return fmt.Sprintf("reco:match:%s:%.4f:%.4f", q.Name, q.Lat, q.Lon)
}

type RedisCache struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewRedisCache(rc *database.RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: rc, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Match, error) {
	var m Match
	if err := c.redis.GetJSON(ctx, key, &m); err != nil {
		if errors.Is(err, database.ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return &m, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, m *Match) error {
	return c.redis.SetJSON(ctx, key, m, c.ttl)
}
