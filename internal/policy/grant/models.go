// Package grant resolves explicit per-user permission overrides.
package grant

import (
	"strings"
	"time"

	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// Grant is an administrator-created override of role defaults for one
// (user, endpoint, operation) triple.
//
// Invariants:
//   - created by an administrator, mutated only by expiry or revocation
//   - the decision point reads grants, never writes them
//   - an active deny grant beats every allow, including role defaults
type Grant struct {
	ID        domain.GrantID
	UserID    domain.UserID
	Endpoint  string
	Operation domain.OperationType
	Type      domain.PermissionType
	Status    domain.GrantStatus
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// NewGrant validates and constructs an active grant.
func NewGrant(userID domain.UserID, endpoint string, op domain.OperationType, typ domain.PermissionType, expiresAt *time.Time, now time.Time) (*Grant, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "grant requires a user id")
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "grant requires an endpoint")
	}
	if !op.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "grant requires a valid operation")
	}
	if typ != domain.PermissionAllow && typ != domain.PermissionDeny {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "grant requires a valid permission type")
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "grant expiry must be in the future")
	}
	return &Grant{
		ID:        domain.NewGrantID(),
		UserID:    userID,
		Endpoint:  endpoint,
		Operation: op,
		Type:      typ,
		Status:    domain.GrantStatusActive,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// ActiveAt reports whether the grant is in force at the given instant.
func (g *Grant) ActiveAt(now time.Time) bool {
	if g.Status != domain.GrantStatusActive {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}
	return true
}
