package domain

import dErrors "verdict/pkg/domain-errors"

// CompanyType is the relationship type of the requesting company.
// Invariant: the value must be one of the supported types; the empty string
// means "unknown" and is denied by the company-type guard.
//
// Usage: construct via ParseCompanyType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type CompanyType string

const (
	CompanyTypeInternal      CompanyType = "internal"
	CompanyTypeCustomer      CompanyType = "customer"
	CompanyTypeSupplier      CompanyType = "supplier"
	CompanyTypeSubcontractor CompanyType = "subcontractor"
)

// validCompanyTypes is the single source of truth for valid company types.
var validCompanyTypes = map[CompanyType]bool{
	CompanyTypeInternal:      true,
	CompanyTypeCustomer:      true,
	CompanyTypeSupplier:      true,
	CompanyTypeSubcontractor: true,
}

// ParseCompanyType constructs a CompanyType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseCompanyType(s string) (CompanyType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "company type cannot be empty")
	}
	ct := CompanyType(s)
	if !ct.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid company type")
	}
	return ct, nil
}

// IsValid checks if the company type is one of the supported enum values.
func (ct CompanyType) IsValid() bool {
	return validCompanyTypes[ct]
}

// IsExternal reports whether the company type belongs to a company outside
// the platform operator. External types are subject to guardrails and must
// hold an active relationship to cross company boundaries.
func (ct CompanyType) IsExternal() bool {
	return ct == CompanyTypeCustomer || ct == CompanyTypeSupplier || ct == CompanyTypeSubcontractor
}

// String returns the string representation of the company type.
func (ct CompanyType) String() string {
	return string(ct)
}
