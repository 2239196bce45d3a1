// Package guard enforces company-type guardrails: the hard outer boundary of
// every evaluation. Guardrail denials cannot be overridden by roles or grants.
package guard

import (
	"strings"

	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

// Default resource paths for the external write carve-outs. Suppliers may
// write purchase orders; subcontractors may write production orders.
const (
	DefaultPurchaseOrderPath   = "/api/purchase-orders"
	DefaultProductionOrderPath = "/api/production-orders"
)

// Guard is a pure structural check. It performs no I/O and holds no mutable
// state, so one instance serves arbitrarily many concurrent evaluations.
type Guard struct {
	purchaseOrderPath   string
	productionOrderPath string
}

// Option configures a Guard.
type Option func(*Guard)

// WithPurchaseOrderPath overrides the supplier write carve-out path.
func WithPurchaseOrderPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.purchaseOrderPath = path
		}
	}
}

// WithProductionOrderPath overrides the subcontractor write carve-out path.
func WithProductionOrderPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.productionOrderPath = path
		}
	}
}

// New constructs a guard with default carve-out paths.
func New(opts ...Option) *Guard {
	g := &Guard{
		purchaseOrderPath:   DefaultPurchaseOrderPath,
		productionOrderPath: DefaultProductionOrderPath,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckGuardrails returns the denial reason for a structurally forbidden
// request, or "" when the guard passes. Rules:
//
//   - internal companies: no restriction
//   - customers: read only
//   - suppliers: read, plus write limited to the purchase-order path
//   - subcontractors: read, plus write limited to the production-order path
//   - missing company type or operation: denied outright
func (g *Guard) CheckGuardrails(pctx *models.PolicyContext) string {
	ct := pctx.Subject.CompanyType
	op := pctx.Target.Operation

	if ct == "" {
		return models.ReasonGuardrailNullCompanyType
	}
	if op == "" {
		return models.ReasonGuardrailNullOperation
	}

	switch ct {
	case domain.CompanyTypeInternal:
		return ""
	case domain.CompanyTypeCustomer:
		if op == domain.OperationRead {
			return ""
		}
		return models.ReasonGuardrailCustomerReadonly
	case domain.CompanyTypeSupplier:
		if op == domain.OperationRead {
			return ""
		}
		if op == domain.OperationWrite && matchesResource(pctx.Target.Endpoint, g.purchaseOrderPath) {
			return ""
		}
		return models.ReasonGuardrailSupplierLimitedWrite
	case domain.CompanyTypeSubcontractor:
		if op == domain.OperationRead {
			return ""
		}
		if op == domain.OperationWrite && matchesResource(pctx.Target.Endpoint, g.productionOrderPath) {
			return ""
		}
		return models.ReasonGuardrailSubcontractorLimitedWrite
	default:
		// Unknown company type strings are treated like a missing type.
		return models.ReasonGuardrailNullCompanyType
	}
}

// IsOperationAllowed exposes the guard table without the endpoint-specific
// carve-outs, for quick capability checks such as UI feature flags. A supplier
// "can write" in general even though the guard limits where.
func IsOperationAllowed(ct domain.CompanyType, op domain.OperationType) bool {
	if ct == "" || op == "" {
		return false
	}
	switch ct {
	case domain.CompanyTypeInternal:
		return op.IsValid()
	case domain.CompanyTypeCustomer:
		return op == domain.OperationRead
	case domain.CompanyTypeSupplier, domain.CompanyTypeSubcontractor:
		return op == domain.OperationRead || op == domain.OperationWrite
	default:
		return false
	}
}

// matchesResource reports whether endpoint addresses the given resource path,
// including sub-resources ("/api/purchase-orders/123/lines").
func matchesResource(endpoint, path string) bool {
	if endpoint == path {
		return true
	}
	return strings.HasPrefix(endpoint, path+"/")
}
