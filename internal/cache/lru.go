package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache is a size-bounded cache whose entries expire after a TTL.
// Expired entries are dropped by the underlying expirable LRU, so no
// separate cleanup loop is needed.
type LRUCache[T any] struct {
	lru *expirable.LRU[string, T]
}

// NewLRUCache creates a new LRU cache with TTL
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LRUCache[T]{
		lru: expirable.NewLRU[string, T](maxSize, nil, ttl),
	}
}

// Get retrieves a value from the cache
func (c *LRUCache[T]) Get(key string) (T, bool) {
	return c.lru.Get(key)
}

// Set stores a value in the cache
func (c *LRUCache[T]) Set(key string, data T) {
	c.lru.Add(key, data)
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	c.lru.Remove(key)
}

// Purge removes every entry.
func (c *LRUCache[T]) Purge() {
	c.lru.Purge()
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	return c.lru.Len()
}

var _ Cache[int] = (*LRUCache[int])(nil)
