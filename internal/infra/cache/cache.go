// Package cache provides a bounded, TTL-aware response cache for the
// chat engine. Entries are keyed by a digest of the normalized query
// and the recent conversation context, so the same question asked in a
// different conversational state produces a distinct key.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ResponseCache stores finished chat responses with LRU eviction and a
// fixed TTL. It is safe for concurrent use.
type ResponseCache[V any] struct {
	lru    *expirable.LRU[string, V]
	hits   atomic.Int64
	misses atomic.Int64
}

// New builds a cache holding at most capacity entries, each expiring
// ttl after insertion. A non-positive capacity falls back to 100 and a
// non-positive ttl to one hour.
func New[V any](capacity int, ttl time.Duration) *ResponseCache[V] {
	if capacity <= 0 {
		capacity = 100
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResponseCache[V]{
		lru: expirable.NewLRU[string, V](capacity, nil, ttl),
	}
}

// Key derives the cache key for a normalized query in the context of
// the most recent conversation turns. Turns must already be ordered
// oldest-first; only the caller-selected window participates.
func Key(normalized string, recentTurns []string) string {
	h := sha256.New()
	h.Write([]byte(normalized))
	for _, t := range recentTurns {
		h.Write([]byte{0})
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value for key, if present and not expired.
func (c *ResponseCache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key, evicting the least recently used entry
// when the cache is at capacity.
func (c *ResponseCache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Len reports the number of live entries.
func (c *ResponseCache[V]) Len() int {
	return c.lru.Len()
}

// Stats returns the cumulative hit and miss counts.
func (c *ResponseCache[V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
