package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reco-workers/internal/common/database"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/metrics"
	"reco-workers/internal/models"
)

var cachedSlots = []models.TimeSlot{
	models.TimeSlotAny,
	models.TimeSlotBreakfast,
	models.TimeSlotLunch,
	models.TimeSlotDinner,
	models.TimeSlotLateNight,
}

// ProfileLoader builds a profile from the source of truth.
type ProfileLoader interface {
	Load(ctx context.Context, userID string, slot models.TimeSlot) (models.UserPreferenceProfile, error)
}

// ProfileCache fronts a ProfileLoader with Redis. Only complete profiles are
// cached; feedback writes invalidate every slot of the user.
type ProfileCache struct {
	loader ProfileLoader
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewProfileCache(loader ProfileLoader, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *ProfileCache {
	return &ProfileCache{loader: loader, redis: redis, ttl: ttl, logger: log}
}

func profileKey(userID string, slot models.TimeSlot) string {
	s := string(slot)
	if s == "" {
		s = "any"
	}
	return fmt.Sprintf("reco:profile:%s:%s", userID, s)
}

// Profile never fails: read errors degrade to whatever could be loaded.
func (c *ProfileCache) Profile(ctx context.Context, userID string, slot models.TimeSlot) models.UserPreferenceProfile {
	key := profileKey(userID, slot)

	if c.redis != nil {
		var cached models.UserPreferenceProfile
		err := c.redis.GetJSON(ctx, key, &cached)
		if err == nil {
			return normalizeProfile(cached)
		}
		if !errors.Is(err, database.ErrCacheMiss) {
			metrics.StoreErrors.WithLabelValues("redis", "profile_get").Inc()
			c.logger.Warn("profile cache read failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		}
	}

	profile, err := c.loader.Load(ctx, userID, slot)
	if err != nil {
		c.logger.Warn("preference lookup degraded", map[string]interface{}{"userId": userID, "error": err.Error()})
		return normalizeProfile(profile)
	}

	if c.redis != nil && c.ttl > 0 {
		if err := c.redis.SetJSON(ctx, key, profile, c.ttl); err != nil {
			metrics.StoreErrors.WithLabelValues("redis", "profile_set").Inc()
			c.logger.Warn("profile cache write failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		}
	}
	return normalizeProfile(profile)
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	if c.redis == nil {
		return nil
	}
	keys := make([]string, 0, len(cachedSlots))
	for _, slot := range cachedSlots {
		keys = append(keys, profileKey(userID, slot))
	}
	if err := c.redis.Del(ctx, keys...); err != nil {
		metrics.StoreErrors.WithLabelValues("redis", "profile_invalidate").Inc()
		return fmt.Errorf("invalidate profile %s: %w", userID, err)
	}
	return nil
}

func normalizeProfile(p models.UserPreferenceProfile) models.UserPreferenceProfile {
	if p.CategoryAffinity == nil {
		p.CategoryAffinity = map[string]float64{}
	}
	if p.RestaurantAffinity == nil {
		p.RestaurantAffinity = map[string]float64{}
	}
	return p
}
