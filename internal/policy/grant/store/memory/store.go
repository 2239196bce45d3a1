package memory

import (
	"context"
	"sort"
	"sync"

	"verdict/internal/policy/grant"
	"verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

// Store is an in-memory grant store for development and tests.
type Store struct {
	mu     sync.RWMutex
	grants map[domain.UserID][]*grant.Grant
}

// New constructs an empty in-memory grant store.
func New() *Store {
	return &Store{grants: make(map[domain.UserID][]*grant.Grant)}
}

// Clear drops all grants. Test helper.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants = make(map[domain.UserID][]*grant.Grant)
}

func (s *Store) FindMatching(_ context.Context, userID domain.UserID, endpoint string, op domain.OperationType, typ domain.PermissionType) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*grant.Grant
	for _, g := range s.grants[userID] {
		if g.Endpoint == endpoint && g.Operation == op && g.Type == typ {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *g
	s.grants[g.UserID] = append(s.grants[g.UserID], &copied)
	return nil
}

func (s *Store) Revoke(_ context.Context, id domain.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userGrants := range s.grants {
		for _, g := range userGrants {
			if g.ID == id {
				g.Status = domain.GrantStatusRevoked
				return nil
			}
		}
	}
	return sentinel.ErrNotFound
}

func (s *Store) ListByUser(_ context.Context, userID domain.UserID) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*grant.Grant, 0, len(s.grants[userID]))
	for _, g := range s.grants[userID] {
		copied := *g
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
