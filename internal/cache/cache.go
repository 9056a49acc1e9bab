// Package cache provides the explicit load cache: results are keyed by
// (directory path, modification signature) and invalidated either explicitly
// or by the signature changing. Concurrent loads for the same key collapse
// into a single execution.
package cache

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	signature string
	value     T
}

// Cache is a signature-checked cache. The zero value is not usable; use New.
type Cache[T any] struct {
	mu      sync.RWMutex
	group   singleflight.Group
	entries map[string]entry[T]
}

// New creates an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]entry[T])}
}

// Get returns the cached value for key while its signature is unchanged,
// otherwise runs load and caches the result. Concurrent calls with the same
// key and signature share one load. Load errors are returned and never
// cached.
func (c *Cache[T]) Get(key, signature string, load func() (T, error)) (T, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && e.signature == signature {
		return e.value, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%s|%s", key, signature), func() (interface{}, error) {
		// Another caller may have completed the load while we waited.
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && e.signature == signature {
			return e.value, nil
		}

		value, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry[T]{signature: signature, value: value}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value for key, forcing the next Get to reload.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
