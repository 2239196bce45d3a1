package grant

import (
	"context"

	"verdict/pkg/domain"
)

// Store defines the persistence interface for user permission grants.
// FindMatching is the only call on the decision path; the rest serve the
// administrative surface and cache invalidation flows.
type Store interface {
	// FindMatching returns grants of the given type for the exact
	// (user, endpoint, operation) triple. Implementations may pre-filter on
	// status and expiry; the resolver re-checks ActiveAt regardless.
	FindMatching(ctx context.Context, userID domain.UserID, endpoint string, op domain.OperationType, typ domain.PermissionType) ([]*Grant, error)

	// Create persists a new grant.
	Create(ctx context.Context, g *Grant) error

	// Revoke marks a grant revoked. Returns sentinel.ErrNotFound when absent.
	Revoke(ctx context.Context, id domain.GrantID) error

	// ListByUser returns all grants for a user, most recent first.
	ListByUser(ctx context.Context, userID domain.UserID) ([]*Grant, error)
}
