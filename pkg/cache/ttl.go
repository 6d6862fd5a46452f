// Package cache provides a small url-keyed cache with lazy expiration.
package cache

import (
	"slices"
	"time"

	expcache "github.com/go-pkgz/expirable-cache/v3"
)

// TTL keeps values for a fixed duration. Stale entries are dropped on lookup, there is no background sweep.
type TTL[V any] struct {
	ttl   time.Duration
	items expcache.Cache[string, V]
}

// Stats is a snapshot of cache state
type Stats struct {
	Size   int      `json:"size"`
	Keys   []string `json:"keys"`
	TTL    string   `json:"ttl"`
	Hits   int      `json:"hits"`
	Misses int      `json:"misses"`
}

// NewTTL makes a cache keeping values for ttl
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{ttl: ttl, items: expcache.NewCache[string, V]().WithTTL(ttl)}
}

// Get returns a fresh value for key. A stale entry is evicted and reported as absent.
func (c *TTL[V]) Get(key string) (V, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		c.items.Invalidate(key)
		var zero V
		return zero, false
	}
	return v, true
}

// Set stores value under key for the cache ttl
func (c *TTL[V]) Set(key string, value V) {
	c.items.Set(key, value, 0)
}

// Clear drops all entries
func (c *TTL[V]) Clear() {
	c.items.Purge()
}

// Stats returns size and keys, stale entries included until looked up
func (c *TTL[V]) Stats() Stats {
	st := c.items.Stat()
	keys := c.items.Keys()
	slices.Sort(keys)
	return Stats{Size: len(keys), Keys: keys, TTL: c.ttl.String(), Hits: st.Hits, Misses: st.Misses}
}
