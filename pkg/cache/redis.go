package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the pipeline's memoization with a shared Redis
// instance, so a fleet of batch workers re-running overlapping buildings
// reuse each other's Axis Discovery and Snap Engine results instead of
// recomputing them once per process.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr (host:port) and verifies the connection
// with a PING before returning.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: connect to %s: %w", addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value. A Redis miss (redis.Nil) is reported as hit=false
// with no error. Connection-level failures are retried with backoff — a
// worker fleet sharing one Redis instance should ride out a brief network
// blip rather than fall back to recomputing Axis Discovery.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var hit bool
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return Retryable(fmt.Errorf("redis: get %s: %w", key, err))
		}
		data, hit = b, true
		return nil
	})
	return data, hit, err
}

// Set stores a value. ttl of 0 means no expiration (Redis KEEPTTL semantics
// do not apply here — a zero TTL is a genuinely permanent key).
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
			return Retryable(fmt.Errorf("redis: set %s: %w", key, err))
		}
		return nil
	})
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return Retryable(fmt.Errorf("redis: delete %s: %w", key, err))
		}
		return nil
	})
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
