package domain

import dErrors "verdict/pkg/domain-errors"

// OperationType classifies what a request does to its target resource.
// The empty string means "unknown" and is denied by the company-type guard.
type OperationType string

const (
	OperationRead    OperationType = "read"
	OperationWrite   OperationType = "write"
	OperationDelete  OperationType = "delete"
	OperationApprove OperationType = "approve"
	OperationExport  OperationType = "export"
	OperationManage  OperationType = "manage"
)

var validOperations = map[OperationType]bool{
	OperationRead:    true,
	OperationWrite:   true,
	OperationDelete:  true,
	OperationApprove: true,
	OperationExport:  true,
	OperationManage:  true,
}

// ParseOperationType constructs an OperationType from external input.
func ParseOperationType(s string) (OperationType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "operation cannot be empty")
	}
	op := OperationType(s)
	if !op.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid operation")
	}
	return op, nil
}

// IsValid checks if the operation is one of the supported enum values.
func (op OperationType) IsValid() bool {
	return validOperations[op]
}

// IsMutation reports whether the operation changes state. Read is the only
// non-mutating operation; export copies data out and counts as sensitive.
func (op OperationType) IsMutation() bool {
	return op != OperationRead && op != ""
}

// String returns the string representation of the operation.
func (op OperationType) String() string {
	return string(op)
}

// OperationForMethod maps an HTTP method to its default operation.
// Callers with richer routing metadata should prefer the policy registry.
func OperationForMethod(method string) OperationType {
	switch method {
	case "GET", "HEAD":
		return OperationRead
	case "POST", "PUT", "PATCH":
		return OperationWrite
	case "DELETE":
		return OperationDelete
	default:
		return ""
	}
}
