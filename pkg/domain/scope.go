package domain

import dErrors "verdict/pkg/domain-errors"

// DataScope is the breadth of data a request claims to touch. The scope
// resolver validates the claim against actual resource ownership.
type DataScope string

const (
	// ScopeSelf covers data owned by the requesting user.
	ScopeSelf DataScope = "self"

	// ScopeCompany covers data belonging to the requesting user's company.
	ScopeCompany DataScope = "company"

	// ScopeCrossCompany covers data of a related company. External company
	// types need an active relationship to use it.
	ScopeCrossCompany DataScope = "cross_company"

	// ScopeGlobal covers platform-wide data and requires the super admin role.
	ScopeGlobal DataScope = "global"
)

var validScopes = map[DataScope]bool{
	ScopeSelf:         true,
	ScopeCompany:      true,
	ScopeCrossCompany: true,
	ScopeGlobal:       true,
}

// ParseDataScope constructs a DataScope from external input.
func ParseDataScope(s string) (DataScope, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "scope cannot be empty")
	}
	sc := DataScope(s)
	if !sc.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid scope")
	}
	return sc, nil
}

// IsValid checks if the scope is one of the supported enum values.
func (sc DataScope) IsValid() bool {
	return validScopes[sc]
}

// String returns the string representation of the scope.
func (sc DataScope) String() string {
	return string(sc)
}
