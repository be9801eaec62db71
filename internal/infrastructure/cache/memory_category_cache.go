package cache

import (
	"context"
	"sync"
	"time"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// MemoryCategoryCache implements supplier.CategoryCache with a single
// in-process entry. Categories change rarely; staleness across restarts is
// acceptable, so no durable backing is needed.
type MemoryCategoryCache struct {
	mu        sync.RWMutex
	tree      []supplier.CategoryNode
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryCategoryCache creates an in-memory category cache.
func NewMemoryCategoryCache() *MemoryCategoryCache {
	return &MemoryCategoryCache{now: time.Now}
}

// NewMemoryCategoryCacheWithClock creates a cache with an injected clock.
func NewMemoryCategoryCacheWithClock(now func() time.Time) *MemoryCategoryCache {
	return &MemoryCategoryCache{now: now}
}

// Get returns the live cached tree or supplier.ErrCacheMiss.
func (c *MemoryCategoryCache) Get(_ context.Context) ([]supplier.CategoryNode, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tree == nil || c.now().After(c.expiresAt) {
		return nil, supplier.ErrCacheMiss
	}
	return c.tree, nil
}

// Put replaces the cached tree with the given TTL.
func (c *MemoryCategoryCache) Put(_ context.Context, tree []supplier.CategoryNode, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = tree
	c.expiresAt = c.now().Add(ttl)
	return nil
}

// Ensure MemoryCategoryCache implements supplier.CategoryCache
var _ supplier.CategoryCache = (*MemoryCategoryCache)(nil)
