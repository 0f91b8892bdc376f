// Package cache keeps short-lived copies of the unfiltered category and
// artwork listings. Writes invalidate; TTL bounds staleness otherwise.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gallery-api/internal/logging"
	"gallery-api/internal/metrics"
)

type Resource string

const (
	Categories Resource = "categories"
	Artworks   Resource = "artworks"
)

const keyPrefix = "gallery:"

// ResourceCache is safe for concurrent use when its Backend is.
//
// Every Invalidate bumps the resource's generation. A reader takes the
// generation before it queries the store and fills the cache with
// SetIfCurrent, so a snapshot read before a write can never be stored
// after that write's invalidation.
type ResourceCache struct {
	backend Backend
	ttl     map[Resource]time.Duration

	mu  sync.Mutex
	gen map[Resource]uint64
}

func NewResourceCache(backend Backend, categoriesTTL, artworksTTL time.Duration) *ResourceCache {
	return &ResourceCache{
		backend: backend,
		ttl: map[Resource]time.Duration{
			Categories: categoriesTTL,
			Artworks:   artworksTTL,
		},
		gen: make(map[Resource]uint64),
	}
}

func key(r Resource) string { return keyPrefix + string(r) }

// IsValid reports whether r holds data younger than its TTL.
func (c *ResourceCache) IsValid(ctx context.Context, r Resource) bool {
	_, ok := c.backend.Get(ctx, key(r))
	return ok
}

// Get decodes the cached value for r into dest and reports a hit.
func (c *ResourceCache) Get(ctx context.Context, r Resource, dest any) bool {
	raw, ok := c.backend.Get(ctx, key(r))
	if ok {
		if err := json.Unmarshal(raw, dest); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("resource", string(r)).Msg("dropping undecodable cache entry")
			c.backend.Delete(ctx, key(r))
			ok = false
		}
	}
	metrics.RecordCacheLookup(string(r), ok)
	return ok
}

func (c *ResourceCache) encode(ctx context.Context, r Resource, value any) ([]byte, bool) {
	raw, err := json.Marshal(value)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("resource", string(r)).Msg("cache encode failed")
		return nil, false
	}
	return raw, true
}

// Set stores value unconditionally.
func (c *ResourceCache) Set(ctx context.Context, r Resource, value any) {
	raw, ok := c.encode(ctx, r, value)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend.Set(ctx, key(r), raw, c.ttl[r])
}

// Generation identifies the current state of r. Take it before reading the
// data that will be passed to SetIfCurrent.
func (c *ResourceCache) Generation(r Resource) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[r]
}

// SetIfCurrent stores value only if r has not been invalidated since gen
// was taken. It reports whether the value was stored.
func (c *ResourceCache) SetIfCurrent(ctx context.Context, r Resource, gen uint64, value any) bool {
	raw, ok := c.encode(ctx, r, value)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[r] != gen {
		return false
	}
	c.backend.Set(ctx, key(r), raw, c.ttl[r])
	return true
}

// Invalidate empties every listed resource.
func (c *ResourceCache) Invalidate(ctx context.Context, rs ...Resource) {
	keys := make([]string, 0, len(rs))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range rs {
		c.gen[r]++
		keys = append(keys, key(r))
		metrics.RecordCacheInvalidation(string(r))
	}
	c.backend.Delete(ctx, keys...)
}
