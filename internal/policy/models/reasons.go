package models

// Reason codes form a closed set suitable for surfacing to administrators.
// Every denial names the first rule that rejected the request; the two allow
// reasons name the rule that granted it.
const (
	ReasonRoleDefaultAllowed     = "role_default_allowed"
	ReasonUserGrantExplicitAllow = "user_grant_explicit_allow"

	ReasonRoleNoDefaultAccess   = "role_no_default_access"
	ReasonUserGrantExplicitDeny = "user_grant_explicit_deny"
	ReasonPolicyEvaluationError = "policy_evaluation_error"

	ReasonGuardrailCustomerReadonly          = "company_type_guardrail_customer_readonly"
	ReasonGuardrailSupplierLimitedWrite      = "company_type_guardrail_supplier_limited_write"
	ReasonGuardrailSubcontractorLimitedWrite = "company_type_guardrail_subcontractor_limited_write"
	ReasonGuardrailNullCompanyType           = "company_type_guardrail_null_company_type"
	ReasonGuardrailNullOperation             = "company_type_guardrail_null_operation"

	ReasonScopeSelfNotOwner               = "scope_violation_self_not_owner"
	ReasonScopeCompanyUserNoCompany       = "scope_violation_company_user_no_company"
	ReasonScopeCompanyDifferentCompany    = "scope_violation_company_different_company"
	ReasonScopeCrossCompanyNoRelationship = "scope_violation_cross_company_no_relationship"
	ReasonScopeGlobalNotAdmin             = "scope_violation_global_not_admin"
	ReasonScopeUnknown                    = "scope_violation_unknown_scope"
)

// ReasonClass buckets a reason code for metrics labels, keeping cardinality
// bounded regardless of how the reason set grows.
func ReasonClass(reason string) string {
	switch reason {
	case ReasonRoleDefaultAllowed, ReasonRoleNoDefaultAccess:
		return "role"
	case ReasonUserGrantExplicitAllow, ReasonUserGrantExplicitDeny:
		return "grant"
	case ReasonGuardrailCustomerReadonly, ReasonGuardrailSupplierLimitedWrite,
		ReasonGuardrailSubcontractorLimitedWrite, ReasonGuardrailNullCompanyType,
		ReasonGuardrailNullOperation:
		return "guardrail"
	case ReasonScopeSelfNotOwner, ReasonScopeCompanyUserNoCompany,
		ReasonScopeCompanyDifferentCompany, ReasonScopeCrossCompanyNoRelationship,
		ReasonScopeGlobalNotAdmin, ReasonScopeUnknown:
		return "scope"
	case ReasonPolicyEvaluationError:
		return "error"
	default:
		return "other"
	}
}
