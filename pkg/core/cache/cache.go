// Package cache provides a small thread-safe in-memory memo store with
// hit and miss counters. Entries live until deleted or cleared.
package cache

import (
	"sync"
)

// Cache is a thread-safe in-memory cache keyed by K
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V

	// Metrics
	hits   int64
	misses int64
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Items   int     `json:"items"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// New creates an empty cache
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]V)}
}

// Get retrieves a value from the cache
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items[key]
	if !ok {
		c.misses++
		return v, false
	}
	c.hits++
	return v, true
}

// Set stores value under key, replacing any previous value
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Delete removes a value and reports whether it was present
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// Clear removes all items and returns how many were dropped
func (c *Cache[K, V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[K]V)
	return n
}

// Len returns the number of items in the cache
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cache statistics; HitRate is a percentage
func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Items: len(c.items), Hits: c.hits, Misses: c.misses}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total) * 100
	}
	return s
}
