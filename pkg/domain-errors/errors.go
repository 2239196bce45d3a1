// Package dErrors provides coded domain errors. A Code classifies the error
// for transport mapping and tests without string matching; the wrapped cause
// stays available for errors.Is/As chains.
//
// For infrastructure conditions (not found, already exists), use the
// sentinels in pkg/platform/sentinel instead.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Error carries a code, a caller-safe message, and an optional cause.
// Message must not leak internal detail; the cause is for logs and
// errors.Is/As only.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates a cause with a code and context. The cause remains
// reachable through errors.Is and errors.As.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, cause: err}
}

// CodeOf extracts the code of the outermost coded error in err's chain.
// Errors without a code classify as CodeInternal: an unclassified fault
// must map to the most conservative handling, never to a client error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err classifies as the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
