package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/CreativeUnicorns/widgetprefs"
)

// DefaultGCInterval is how often expired entries are swept.
const DefaultGCInterval = time.Minute

// item represents a single cache item with a value and an expiration time.
type item struct {
	value      []byte
	expiration time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// MemoryCache implements the Cache interface using an in-memory store.
type MemoryCache struct {
	mu        sync.RWMutex
	items     map[string]item
	closed    bool
	stop      chan struct{} // signals the gc goroutine to stop
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache initializes a new MemoryCache instance.
// It starts a garbage collection goroutine that runs until Close.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithInterval(DefaultGCInterval)
}

// NewMemoryCacheWithInterval is NewMemoryCache with a custom sweep interval.
func NewMemoryCacheWithInterval(interval time.Duration) *MemoryCache {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	cache := &MemoryCache{
		items: make(map[string]item),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go cache.gc(interval)
	return cache
}

// Get returns a copy of the cached value. Missing and expired keys return
// widgetprefs.ErrNotFound.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, widgetprefs.ErrCacheUnavailable
	}
	it, exists := c.items[key]
	if !exists || it.expired(time.Now()) {
		return nil, widgetprefs.ErrNotFound
	}
	return slices.Clone(it.value), nil
}

// Set stores a copy of value. A ttl of zero or less never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return widgetprefs.ErrCacheUnavailable
	}
	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}
	c.items[key] = item{value: slices.Clone(value), expiration: expiration}
	return nil
}

// Delete removes a key from the memory cache. Missing keys are not an error.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return widgetprefs.ErrCacheUnavailable
	}
	delete(c.items, key)
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the gc goroutine and drops every entry. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done

		c.mu.Lock()
		c.closed = true
		c.items = make(map[string]item)
		c.mu.Unlock()
	})
	return nil
}

// gc periodically removes expired items.
func (c *MemoryCache) gc(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep(time.Now())
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
		}
	}
}
