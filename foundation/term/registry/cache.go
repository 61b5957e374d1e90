// File: cache.go
// Title: Registry Cache
// Description: Memoizes resolved registries per mode for the process
//              lifetime with a single build per key, plus invalidation
//              hooks for configuration reloads.
// Author: msto63
// Version: v0.1.1
// Created: 2026-10-14
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-14 v0.1.0: Initial implementation
// - 2026-10-14 v0.1.1: Builds overtaken by an invalidation are not memoized

package registry

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	mdwlog "github.com/msto63/termcore/foundation/core/log"
	"github.com/msto63/termcore/pkg/core/cache"
)

// CacheOptions configures a registry cache
type CacheOptions struct {
	Logger *mdwlog.Logger
}

// CacheStats is a snapshot of cache activity
type CacheStats struct {
	Entries       int   `json:"entries"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Builds        int64 `json:"builds"`
	Invalidations int64 `json:"invalidations"`
}

// Cache resolves registries and keeps them per mode
type Cache struct {
	catalog Catalog
	memo    *cache.Cache[string, *Registry]
	group   singleflight.Group
	logger  *mdwlog.Logger
	builds  atomic.Int64
	dropped atomic.Int64
	gen     atomic.Uint64 // bumped by every invalidation
}

// NewCache creates a registry cache over catalog
func NewCache(catalog Catalog, opts CacheOptions) *Cache {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	return &Cache{
		catalog: catalog,
		memo:    cache.New[string, *Registry](),
		logger:  opts.Logger.WithField("component", "registry-cache"),
	}
}

// Resolve returns the registry for mode, building it on first use.
// Callers racing on the first resolution share one build. A caller whose
// context ends while waiting builds its own copy rather than failing.
func (c *Cache) Resolve(ctx context.Context, mode string) *Registry {
	key := NormalizeMode(mode)
	if r, ok := c.memo.Get(key); ok {
		return r
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if r, ok := c.memo.Get(key); ok {
			return r, nil
		}
		gen := c.gen.Load()
		r := c.build(key)
		// an invalidation during the build means r may reflect the old overlay
		if c.gen.Load() == gen {
			c.memo.Set(key, r)
		}
		return r, nil
	})

	select {
	case res := <-ch:
		return res.Val.(*Registry)
	case <-ctx.Done():
		c.logger.Debug("Registry wait abandoned, building locally", mdwlog.Fields{
			"mode":  key,
			"cause": ctx.Err().Error(),
		})
		return c.build(key)
	}
}

// Invalidate drops the memoized registry for mode
func (c *Cache) Invalidate(mode string) {
	key := NormalizeMode(mode)
	c.gen.Add(1)
	c.group.Forget(key)
	if c.memo.Delete(key) {
		c.dropped.Add(1)
		c.logger.Info("Registry invalidated", mdwlog.Fields{"mode": key})
	}
}

// InvalidateAll drops every memoized registry
func (c *Cache) InvalidateAll() {
	c.gen.Add(1)
	n := c.memo.Clear()
	if n > 0 {
		c.dropped.Add(int64(n))
		c.logger.Info("All registries invalidated", mdwlog.Fields{"count": n})
	}
}

// Stats returns cache counters
func (c *Cache) Stats() CacheStats {
	s := c.memo.Stats()
	return CacheStats{
		Entries:       s.Items,
		Hits:          s.Hits,
		Misses:        s.Misses,
		Builds:        c.builds.Load(),
		Invalidations: c.dropped.Load(),
	}
}

func (c *Cache) build(mode string) *Registry {
	timer := c.logger.StartTimer("Capability registry build").WithField("mode", mode)
	r := Build(mode, c.catalog)
	c.builds.Add(1)

	timer.WithField("knownMode", r.KnownMode()).WithField("commands", r.Len()).Stop()
	return r
}
