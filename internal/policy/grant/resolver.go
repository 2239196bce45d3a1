package grant

import (
	"context"
	"fmt"
	"time"

	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

// Clock abstracts time for testability.
type Clock func() time.Time

// Resolver answers the engine's two grant questions. It tolerates an absent
// store so the engine stays usable without the grant subsystem wired in:
// the deny check finds nothing and the allow check returns false.
type Resolver struct {
	store Store
	clock Clock
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) ResolverOption {
	return func(r *Resolver) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewResolver constructs a grant resolver. A nil store is legal.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckUserDeny returns a denial reason when an active, non-expired DENY
// grant matches the context's (user, endpoint, operation), or "" otherwise.
func (r *Resolver) CheckUserDeny(ctx context.Context, pctx *models.PolicyContext) (string, error) {
	match, err := r.hasActiveMatch(ctx, pctx, domain.PermissionDeny)
	if err != nil {
		return "", err
	}
	if match {
		return models.ReasonUserGrantExplicitDeny, nil
	}
	return "", nil
}

// HasUserAllow reports whether an active, non-expired ALLOW grant matches the
// context's (user, endpoint, operation).
func (r *Resolver) HasUserAllow(ctx context.Context, pctx *models.PolicyContext) (bool, error) {
	return r.hasActiveMatch(ctx, pctx, domain.PermissionAllow)
}

func (r *Resolver) hasActiveMatch(ctx context.Context, pctx *models.PolicyContext, typ domain.PermissionType) (bool, error) {
	if r.store == nil {
		return false, nil
	}
	grants, err := r.store.FindMatching(ctx, pctx.Subject.UserID, pctx.Target.Endpoint, pctx.Target.Operation, typ)
	if err != nil {
		return false, fmt.Errorf("grant lookup: %w", err)
	}
	now := r.clock()
	for _, g := range grants {
		if g.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}
