package models

import "time"

// PolicyDecision is the immutable outcome of one evaluation.
//
// Invariant: fields are write-once. A decision is never edited after
// creation, only superseded by a new decision for a later request.
type PolicyDecision struct {
	Allowed       bool
	Reason        string
	PolicyVersion string
	DecidedAt     time.Time
	CorrelationID string
}

// NewDecision constructs a decision stamped with the rule-set version and the
// correlation ID of the context it was produced from.
func NewDecision(allowed bool, reason, policyVersion, correlationID string, decidedAt time.Time) PolicyDecision {
	return PolicyDecision{
		Allowed:       allowed,
		Reason:        reason,
		PolicyVersion: policyVersion,
		DecidedAt:     decidedAt,
		CorrelationID: correlationID,
	}
}

// IsExpired reports whether the decision is older than ttl at the given
// instant. Pure function of DecidedAt, used by the optional decision cache.
func (d PolicyDecision) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	return now.After(d.DecidedAt.Add(ttl))
}
