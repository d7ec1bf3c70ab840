// Package cache provides a bounded, TTL'd in-memory cache for query
// embeddings. It is best-effort: a miss or eviction only costs an extra
// provider call, never correctness.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

const (
	defaultMaxSize = 100
	defaultTTL     = time.Hour
)

type entry struct {
	embedding []float32
	storedAt  time.Time
}

// EmbeddingCache maps query texts to embedding vectors. Keys are an
// exact-match content hash of the query string: no normalization, so
// whitespace or case differences are distinct entries.
//
// Eviction on overflow removes the oldest-inserted entry, not the least
// recently used one. The size check and insert run under one lock so two
// concurrent misses cannot both trigger an eviction.
type EmbeddingCache struct {
	mu      sync.Mutex
	entries map[string]entry
	order   []string // insertion order of keys, oldest first
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache holding at most maxSize entries, each expiring ttl
// after insertion. Non-positive arguments fall back to the defaults
// (100 entries, 1 hour).
func New(maxSize int, ttl time.Duration) *EmbeddingCache {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &EmbeddingCache{
		entries: make(map[string]entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func hashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for query, or nil if absent or expired.
// Expired entries are dropped on access.
func (c *EmbeddingCache) Get(query string) []float32 {
	key := hashQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		c.remove(key)
		return nil
	}
	return e.embedding
}

// Set stores the embedding for query, evicting the oldest-inserted entry
// when the cache is full and the key is new.
func (c *EmbeddingCache) Set(query string, embedding []float32) {
	key := hashQuery(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxSize && len(c.order) > 0 {
			c.remove(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{embedding: embedding, storedAt: c.now()}
}

// remove deletes key from both the map and the insertion-order list.
// Callers must hold c.mu.
func (c *EmbeddingCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear drops all entries.
func (c *EmbeddingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = nil
}

// Size returns the number of entries currently held, including any that have
// expired but not yet been dropped.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
