// Package scope validates that a request's claimed data scope matches actual
// resource ownership.
package scope

import (
	"context"
	"fmt"
	"strings"

	"verdict/internal/policy/models"
	"verdict/internal/policy/role"
	"verdict/pkg/domain"
)

// RelationshipStore is the read-only lookup the resolver needs for
// cross-company scope. Implementations live in internal/relationship.
type RelationshipStore interface {
	// RelationshipActive reports whether an active relationship exists
	// between the two companies, in either direction.
	RelationshipActive(ctx context.Context, a, b domain.CompanyID) (bool, error)
}

// Resolver validates data scopes. Safe for concurrent use.
type Resolver struct {
	relationships  RelationshipStore
	superAdminRole string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSuperAdminRole overrides the role required for global scope.
func WithSuperAdminRole(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.superAdminRole = name
		}
	}
}

// New constructs a scope resolver. The relationship store may be nil, in
// which case cross-company access for external companies is always denied.
func New(relationships RelationshipStore, opts ...Option) *Resolver {
	r := &Resolver{
		relationships:  relationships,
		superAdminRole: role.SuperAdmin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidateScope returns the denial reason for a scope violation, or "" when
// the claimed scope holds. A non-nil error means the relationship lookup
// failed; the engine converts that into its fail-closed denial.
func (r *Resolver) ValidateScope(ctx context.Context, pctx *models.PolicyContext) (string, error) {
	switch pctx.Target.Scope {
	case domain.ScopeSelf:
		if !pctx.Resource.OwnerID.IsNil() && pctx.Resource.OwnerID == pctx.Subject.UserID {
			return "", nil
		}
		return models.ReasonScopeSelfNotOwner, nil

	case domain.ScopeCompany:
		if pctx.Subject.CompanyID.IsNil() {
			return models.ReasonScopeCompanyUserNoCompany, nil
		}
		if !pctx.Resource.CompanyID.IsNil() && pctx.Resource.CompanyID == pctx.Subject.CompanyID {
			return "", nil
		}
		return models.ReasonScopeCompanyDifferentCompany, nil

	case domain.ScopeCrossCompany:
		// Internal staff may cross company boundaries unconditionally.
		if pctx.Subject.CompanyType == domain.CompanyTypeInternal {
			return "", nil
		}
		if r.relationships == nil || pctx.Subject.CompanyID.IsNil() || pctx.Resource.CompanyID.IsNil() {
			return models.ReasonScopeCrossCompanyNoRelationship, nil
		}
		active, err := r.relationships.RelationshipActive(ctx, pctx.Subject.CompanyID, pctx.Resource.CompanyID)
		if err != nil {
			return "", fmt.Errorf("relationship lookup: %w", err)
		}
		if !active {
			return models.ReasonScopeCrossCompanyNoRelationship, nil
		}
		return "", nil

	case domain.ScopeGlobal:
		if pctx.HasRole(r.superAdminRole) {
			return "", nil
		}
		return models.ReasonScopeGlobalNotAdmin, nil

	default:
		return models.ReasonScopeUnknown, nil
	}
}

// CanAccess offers the scope table as a plain boolean for callers that only
// need a yes/no and already hold the raw identifiers. Lookup failures count
// as no access.
func (r *Resolver) CanAccess(ctx context.Context, userID, ownerID domain.UserID, companyID, resourceCompanyID domain.CompanyID, sc domain.DataScope) bool {
	pctx := &models.PolicyContext{
		Subject:  models.Subject{UserID: userID, CompanyID: companyID},
		Target:   models.Target{Scope: sc},
		Resource: models.Resource{OwnerID: ownerID, CompanyID: resourceCompanyID},
	}
	// CanAccess has no role or company-type information, so cross-company is
	// resolved purely through the relationship store and global is denied.
	reason, err := r.ValidateScope(ctx, pctx)
	return err == nil && reason == ""
}

// InferScopeFromEndpoint provides a default scope when the caller does not
// supply one. Paths with a self marker infer SELF, admin paths infer GLOBAL,
// and everything else falls back to COMPANY as the conservative default.
func InferScopeFromEndpoint(path string) domain.DataScope {
	if hasSegment(path, "self") || hasSegment(path, "me") {
		return domain.ScopeSelf
	}
	if hasSegment(path, "admin") {
		return domain.ScopeGlobal
	}
	return domain.ScopeCompany
}

func hasSegment(path, segment string) bool {
	for _, s := range strings.Split(path, "/") {
		if s == segment {
			return true
		}
	}
	return false
}
