package cache

import (
	"context"
	"time"
)

// ScopedCache wraps a Cache with a key prefix, isolating one run or tenant
// from another on a shared backend. This is the case a multi-instance
// deployment (a batch worker fleet re-running different buildings against
// one Redis instance) needs: each worker gets its own namespace without
// standing up a separate cache.
//
// Example usage:
//
//	runCache := NewScopedCache(redisCache, "run:"+runID+":")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScopedCache creates a cache with a key prefix. A nil inner defaults
// to NullCache, so a misconfigured caller degrades to "no caching" rather
// than panicking.
func NewScopedCache(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed key from the wrapped cache.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a prefixed key in the wrapped cache.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a prefixed key from the wrapped cache.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the wrapped cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
