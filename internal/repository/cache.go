package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	gameSessionKey   = "game:session:dataset:%d"
	revokedTokenKey  = "auth:revoked:%s"
	gameSessionTTL   = 10 * time.Minute
	cacheCallTimeout = 500 * time.Millisecond
)

// Cache wraps the optional Redis client. Every method is a no-op on a nil
// client, and cache failures never fail a request.
type Cache struct {
	Redis *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{Redis: rdb}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.Redis != nil
}

// GetGameSession decodes a cached session into dst and reports whether it was found.
func (c *Cache) GetGameSession(ctx context.Context, datasetID uint64, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()

	raw, err := c.Redis.Get(ctx, fmt.Sprintf(gameSessionKey, datasetID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *Cache) SetGameSession(ctx context.Context, datasetID uint64, session interface{}) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()
	c.Redis.Set(ctx, fmt.Sprintf(gameSessionKey, datasetID), raw, gameSessionTTL)
}

// InvalidateGameSession drops the composed session after the dataset changed.
func (c *Cache) InvalidateGameSession(ctx context.Context, datasetID uint64) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()
	c.Redis.Del(ctx, fmt.Sprintf(gameSessionKey, datasetID))
}

// RevokeToken marks a token id as revoked until the token would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, jti string, until time.Time) error {
	if !c.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()
	return c.Redis.Set(ctx, fmt.Sprintf(revokedTokenKey, jti), 1, ttl).Err()
}

func (c *Cache) IsTokenRevoked(ctx context.Context, jti string) bool {
	if !c.Enabled() || jti == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()
	n, err := c.Redis.Exists(ctx, fmt.Sprintf(revokedTokenKey, jti)).Result()
	return err == nil && n > 0
}
