package cache

import (
	"context"
	"sync"
	"time"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// productEntry is one stored product with its expiry.
type productEntry struct {
	product   *supplier.Product
	expiresAt time.Time
}

// MemoryProductCache implements supplier.ProductCache with an in-memory map.
// Suitable for single-instance deployments and testing. Expiry is lazy: an
// entry past its TTL is treated as a miss on the next read and dropped.
type MemoryProductCache struct {
	mu      sync.RWMutex
	entries map[string]productEntry
	now     func() time.Time
}

// NewMemoryProductCache creates an in-memory product cache.
func NewMemoryProductCache() *MemoryProductCache {
	return &MemoryProductCache{
		entries: make(map[string]productEntry),
		now:     time.Now,
	}
}

// NewMemoryProductCacheWithClock creates a cache with an injected clock.
func NewMemoryProductCacheWithClock(now func() time.Time) *MemoryProductCache {
	c := NewMemoryProductCache()
	c.now = now
	return c
}

// Get returns a live cached product or supplier.ErrCacheMiss.
func (c *MemoryProductCache) Get(_ context.Context, productID string) (*supplier.Product, error) {
	c.mu.RLock()
	e, ok := c.entries[productID]
	c.mu.RUnlock()
	if !ok {
		return nil, supplier.ErrCacheMiss
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, productID)
		c.mu.Unlock()
		return nil, supplier.ErrCacheMiss
	}
	return e.product, nil
}

// Put stores a product with the given TTL.
func (c *MemoryProductCache) Put(_ context.Context, productID string, product *supplier.Product, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[productID] = productEntry{
		product:   product,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired or not (for tests).
func (c *MemoryProductCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure MemoryProductCache implements supplier.ProductCache
var _ supplier.ProductCache = (*MemoryProductCache)(nil)
