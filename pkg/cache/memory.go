package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process memory. It is the default backend of
// `dendro serve`.
type MemoryCache struct {
	items  *gocache.Cache
	closed atomic.Bool
}

// NewMemoryCache returns a MemoryCache that sweeps expired entries every
// cleanup interval. A cleanup of 0 disables sweeping; expired entries are
// still never returned.
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, cleanup)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.closed.Load() {
		return nil, false, ErrClosed
	}
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	data := v.([]byte)
	return append([]byte(nil), data...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}
	exp := gocache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	c.items.Set(key, append([]byte(nil), data...), exp)
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.items.Delete(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.items.Flush()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *MemoryCache) Len() int { return c.items.ItemCount() }

// Close drops every entry. Later calls fail with [ErrClosed].
func (c *MemoryCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.items.Flush()
	return nil
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
