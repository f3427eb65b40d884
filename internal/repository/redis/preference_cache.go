package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"artMarket/business/recommend"
	"artMarket/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const defaultVectorTTL = 15 * time.Minute

// PreferenceCache keeps normalized user vectors in redis so the hot
// recommendation path skips the database. Cache failures are logged and
// swallowed; the store remains the source of truth.
type PreferenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreferenceCache(client *redis.Client) *PreferenceCache {
	return &PreferenceCache{client: client, ttl: defaultVectorTTL}
}

var _ recommend.PreferenceCache = (*PreferenceCache)(nil)

func vectorKey(userID uint) string {
	return fmt.Sprintf("pref:vector:%d", userID)
}

func (c *PreferenceCache) GetVector(ctx context.Context, userID uint) ([]float64, bool) {
	raw, err := c.client.Get(ctx, vectorKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("preference cache read failed", "user_id", userID, "error", err)
		}
		return nil, false
	}

	var vector []float64
	if err := json.Unmarshal(raw, &vector); err != nil {
		logger.Warn("preference cache entry corrupt, dropping", "user_id", userID, "error", err)
		c.client.Del(ctx, vectorKey(userID))
		return nil, false
	}

	return vector, true
}

func (c *PreferenceCache) SetVector(ctx context.Context, userID uint, vector []float64) {
	raw, err := json.Marshal(vector)
	if err != nil {
		logger.Warn("preference cache marshal failed", "user_id", userID, "error", err)
		return
	}

	if err := c.client.Set(ctx, vectorKey(userID), raw, c.ttl).Err(); err != nil {
		logger.Warn("preference cache write failed", "user_id", userID, "error", err)
	}
}
