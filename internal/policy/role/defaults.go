// Package role encodes the baseline capability table: what a role set may do
// absent any explicit user grant.
package role

import "verdict/pkg/domain"

// Well-known role names. The grant and scope layers refer to SuperAdmin; the
// rest exist as tiers in the default table.
const (
	SuperAdmin = "super_admin"
	Admin      = "admin"
	Manager    = "manager"
	User       = "user"
	Viewer     = "viewer"
)

// defaultOperations is the single source of truth for role defaults.
// Elevated tiers default-allow mutations; baseline tiers read only. Roles not
// listed here grant nothing by default (an explicit allow grant still works).
var defaultOperations = map[string]map[domain.OperationType]bool{
	SuperAdmin: {
		domain.OperationRead:    true,
		domain.OperationWrite:   true,
		domain.OperationDelete:  true,
		domain.OperationApprove: true,
		domain.OperationExport:  true,
		domain.OperationManage:  true,
	},
	Admin: {
		domain.OperationRead:    true,
		domain.OperationWrite:   true,
		domain.OperationDelete:  true,
		domain.OperationApprove: true,
		domain.OperationExport:  true,
		domain.OperationManage:  true,
	},
	Manager: {
		domain.OperationRead:    true,
		domain.OperationWrite:   true,
		domain.OperationApprove: true,
	},
	User: {
		domain.OperationRead: true,
	},
	Viewer: {
		domain.OperationRead: true,
	},
}

// HasDefaultAccess reports whether any role in the set default-allows the
// operation. An empty role set never grants default access.
func HasDefaultAccess(roles []string, op domain.OperationType) bool {
	if op == "" {
		return false
	}
	for _, r := range roles {
		if defaultOperations[r][op] {
			return true
		}
	}
	return false
}
