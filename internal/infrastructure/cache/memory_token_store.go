package cache

import (
	"context"
	"sync"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// MemoryTokenStore implements supplier.TokenStore with an in-memory record.
// Suitable for single-instance deployments and testing; other instances
// cannot see tokens saved here.
type MemoryTokenStore struct {
	mu   sync.RWMutex
	pair *supplier.TokenPair
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Load returns the stored pair or supplier.ErrTokenNotFound.
func (s *MemoryTokenStore) Load(_ context.Context) (*supplier.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pair == nil {
		return nil, supplier.ErrTokenNotFound
	}
	pair := *s.pair
	return &pair, nil
}

// Save replaces the stored pair wholesale.
func (s *MemoryTokenStore) Save(_ context.Context, pair *supplier.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *pair
	s.pair = &copied
	return nil
}

// Ensure MemoryTokenStore implements supplier.TokenStore
var _ supplier.TokenStore = (*MemoryTokenStore)(nil)
