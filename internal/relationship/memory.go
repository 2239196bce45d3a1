package relationship

import (
	"context"
	"sync"

	"verdict/pkg/domain"
)

// MemoryStore is an in-memory relationship store for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	active map[string]bool
}

// NewMemoryStore constructs an empty in-memory relationship store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{active: make(map[string]bool)}
}

func (s *MemoryStore) RelationshipActive(_ context.Context, a, b domain.CompanyID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[pairKey(a, b)], nil
}

// Activate records an active relationship between two companies.
func (s *MemoryStore) Activate(a, b domain.CompanyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[pairKey(a, b)] = true
}

// Deactivate removes the relationship between two companies.
func (s *MemoryStore) Deactivate(a, b domain.CompanyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, pairKey(a, b))
}
