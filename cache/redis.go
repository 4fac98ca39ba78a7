package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis so replicas behind one load balancer
// can share a rendered report.
type RedisCache struct {
	client redis.UniversalClient
	policy Policy
}

// NewRedisCache creates a cache on client. The policy's MaxTTL clamps every Set.
func NewRedisCache(client redis.UniversalClient, policy Policy) *RedisCache {
	return &RedisCache{client: client, policy: policy}
}

// Get retrieves a value. Redis errors are treated as misses.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value for ttl, clamped to the policy's MaxTTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrNilCache
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	ttl = c.policy.clamp(ttl)
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a value. Idempotent.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return ErrNilCache
	}

	if err := c.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
