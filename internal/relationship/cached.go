package relationship

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"verdict/pkg/domain"
)

const cacheKeyPrefix = "verdict:relationship:"

// CachedStore wraps a Store with a Redis read-through cache.
//
// Stale entries can let a severed relationship leak through for at most the
// TTL; admin flows that change relationships must call Invalidate, and the
// TTL should stay short.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached constructs a cached relationship store.
func NewCached(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedStore) RelationshipActive(ctx context.Context, a, b domain.CompanyID) (bool, error) {
	key := cacheKeyPrefix + pairKey(a, b)

	val, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return val == "1", nil
	case err != redis.Nil && s.logger != nil:
		// Cache trouble is not a reason to fail the lookup.
		s.logger.WarnContext(ctx, "relationship cache read failed", "error", err)
	}

	active, err := s.inner.RelationshipActive(ctx, a, b)
	if err != nil {
		return false, err
	}

	cached := "0"
	if active {
		cached = "1"
	}
	if err := s.client.Set(ctx, key, cached, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "relationship cache write failed", "error", err)
	}
	return active, nil
}

// Invalidate drops the cached entry for a company pair. Must be called by any
// flow that activates or severs a relationship.
func (s *CachedStore) Invalidate(ctx context.Context, a, b domain.CompanyID) error {
	return s.client.Del(ctx, cacheKeyPrefix+pairKey(a, b)).Err()
}
