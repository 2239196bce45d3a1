// Package domain holds the typed identifiers and closed enumerations shared by
// the policy modules. Values are constructed via ParseXxx at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "verdict/pkg/domain-errors"
)

// Typed IDs prevent cross-type assignment at compile time. A UserID can never
// be passed where a CompanyID is expected.
type (
	// UserID identifies the requesting user.
	UserID uuid.UUID

	// CompanyID identifies a company. The zero value means "no company",
	// which is a legal state for contexts (validated by the scope resolver).
	CompanyID uuid.UUID

	// GrantID identifies a user permission grant.
	GrantID uuid.UUID
)

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id GrantID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id CompanyID) String() string { return uuid.UUID(id).String() }
func (id GrantID) String() string   { return uuid.UUID(id).String() }

// NewGrantID mints a random grant identifier.
func NewGrantID() GrantID { return GrantID(uuid.New()) }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", what)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", what)
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseCompanyID constructs a CompanyID from external input.
func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseUUID(s, "company id")
	if err != nil {
		return CompanyID{}, err
	}
	return CompanyID(u), nil
}

// ParseGrantID constructs a GrantID from external input.
func ParseGrantID(s string) (GrantID, error) {
	u, err := parseUUID(s, "grant id")
	if err != nil {
		return GrantID{}, err
	}
	return GrantID(u), nil
}
