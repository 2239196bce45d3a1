// Package models holds the immutable input and output values of the policy
// decision point.
package models

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// Subject describes who is asking.
type Subject struct {
	UserID      domain.UserID
	CompanyID   domain.CompanyID // nil UUID means "no company"
	CompanyType domain.CompanyType
	Roles       []string
}

// Target describes what is being asked for.
type Target struct {
	Endpoint  string
	Method    string
	Operation domain.OperationType
	Scope     domain.DataScope
}

// Resource carries ownership metadata for the specific resource accessed.
// The decision point never looks business data up itself; the caller supplies
// these from its own reads.
type Resource struct {
	OwnerID   domain.UserID    // nil UUID means "no owner"
	CompanyID domain.CompanyID // nil UUID means "no owning company"
}

// Trace links the evaluation to its originating request.
type Trace struct {
	CorrelationID string
	RequestID     string
	RequestIP     string
	UserAgent     string
}

// PolicyContext is the sole input to every resolver.
//
// Invariants:
//   - UserID is non-nil and Endpoint is non-empty
//   - a context is built once per request and never mutated afterwards;
//     all evaluations for the request read the same snapshot
//   - Roles is defensively copied at construction
//
// A missing CompanyType or Operation is a legal (denied) state, not a
// construction error: the guard converts it into a deterministic denial.
type PolicyContext struct {
	Subject  Subject
	Target   Target
	Resource Resource
	Trace    Trace
}

// NewPolicyContext validates and freezes a per-request context.
//
// Errors: CodeInvalidInput when the subject or target is structurally unusable
// (no user, no endpoint). Everything else is left for the evaluation pipeline
// to deny with a specific reason.
func NewPolicyContext(subject Subject, target Target, resource Resource, trace Trace) (*PolicyContext, error) {
	if subject.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "policy context requires a user id")
	}
	if strings.TrimSpace(target.Endpoint) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "policy context requires an endpoint")
	}
	if trace.CorrelationID == "" {
		trace.CorrelationID = uuid.NewString()
	}

	roles := make([]string, len(subject.Roles))
	copy(roles, subject.Roles)
	subject.Roles = roles

	return &PolicyContext{
		Subject:  subject,
		Target:   target,
		Resource: resource,
		Trace:    trace,
	}, nil
}

// HasRole reports whether the subject carries the given role.
func (c *PolicyContext) HasRole(role string) bool {
	for _, r := range c.Subject.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Fingerprint returns a stable hash of the decision-relevant fields. Two
// contexts that must evaluate identically (absent store changes) share a
// fingerprint; tracing fields do not participate.
func (c *PolicyContext) Fingerprint() string {
	roles := make([]string, len(c.Subject.Roles))
	copy(roles, c.Subject.Roles)
	sort.Strings(roles)

	var b strings.Builder
	b.WriteString(c.Subject.UserID.String())
	b.WriteByte('|')
	b.WriteString(c.Subject.CompanyID.String())
	b.WriteByte('|')
	b.WriteString(c.Subject.CompanyType.String())
	b.WriteByte('|')
	b.WriteString(strings.Join(roles, ","))
	b.WriteByte('|')
	b.WriteString(c.Target.Endpoint)
	b.WriteByte('|')
	b.WriteString(c.Target.Method)
	b.WriteByte('|')
	b.WriteString(c.Target.Operation.String())
	b.WriteByte('|')
	b.WriteString(c.Target.Scope.String())
	b.WriteByte('|')
	b.WriteString(c.Resource.OwnerID.String())
	b.WriteByte('|')
	b.WriteString(c.Resource.CompanyID.String())

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
