package domain

import dErrors "verdict/pkg/domain-errors"

// PermissionType is the effect of a user permission grant.
// An active deny grant always beats every allow, including role defaults.
type PermissionType string

const (
	PermissionAllow PermissionType = "allow"
	PermissionDeny  PermissionType = "deny"
)

// ParsePermissionType constructs a PermissionType from external input.
func ParsePermissionType(s string) (PermissionType, error) {
	switch PermissionType(s) {
	case PermissionAllow, PermissionDeny:
		return PermissionType(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "permission type cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid permission type")
	}
}

// String returns the string representation of the permission type.
func (pt PermissionType) String() string { return string(pt) }

// GrantStatus is the lifecycle state of a user permission grant.
// Transitions: active -> expired (by clock) and active -> revoked (by admin).
// The decision point itself never mutates grants.
type GrantStatus string

const (
	GrantStatusActive  GrantStatus = "active"
	GrantStatusExpired GrantStatus = "expired"
	GrantStatusRevoked GrantStatus = "revoked"
)

// ParseGrantStatus constructs a GrantStatus from external input.
func ParseGrantStatus(s string) (GrantStatus, error) {
	switch GrantStatus(s) {
	case GrantStatusActive, GrantStatusExpired, GrantStatusRevoked:
		return GrantStatus(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "grant status cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid grant status")
	}
}

// String returns the string representation of the status.
func (gs GrantStatus) String() string { return string(gs) }
