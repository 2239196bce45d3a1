// Package audit records every policy decision: a synchronous append to
// durable storage plus an asynchronous publish for downstream analytics.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"verdict/internal/policy/models"
	"verdict/pkg/domain"
)

// DecisionRecord is the persisted form of one policy decision together with
// the context it was made in. Records are append-only.
type DecisionRecord struct {
	ID            uuid.UUID
	CorrelationID string
	RequestID     string

	UserID      domain.UserID
	CompanyID   domain.CompanyID
	CompanyType domain.CompanyType
	Roles       []string

	Endpoint  string
	Method    string
	Operation domain.OperationType
	Scope     domain.DataScope

	ResourceOwnerID   domain.UserID
	ResourceCompanyID domain.CompanyID

	Allowed       bool
	Reason        string
	PolicyVersion string
	LatencyMs     int64

	RequestIP string
	Device    string

	DecidedAt time.Time
	CreatedAt time.Time
}

// NewDecisionRecord flattens a context and decision into a record.
func NewDecisionRecord(pctx *models.PolicyContext, d models.PolicyDecision, latency time.Duration, now time.Time) DecisionRecord {
	roles := make([]string, len(pctx.Subject.Roles))
	copy(roles, pctx.Subject.Roles)

	return DecisionRecord{
		ID:                uuid.New(),
		CorrelationID:     d.CorrelationID,
		RequestID:         pctx.Trace.RequestID,
		UserID:            pctx.Subject.UserID,
		CompanyID:         pctx.Subject.CompanyID,
		CompanyType:       pctx.Subject.CompanyType,
		Roles:             roles,
		Endpoint:          pctx.Target.Endpoint,
		Method:            pctx.Target.Method,
		Operation:         pctx.Target.Operation,
		Scope:             pctx.Target.Scope,
		ResourceOwnerID:   pctx.Resource.OwnerID,
		ResourceCompanyID: pctx.Resource.CompanyID,
		Allowed:           d.Allowed,
		Reason:            d.Reason,
		PolicyVersion:     d.PolicyVersion,
		LatencyMs:         latency.Milliseconds(),
		RequestIP:         pctx.Trace.RequestIP,
		Device:            pctx.Trace.UserAgent,
		DecidedAt:         d.DecidedAt,
		CreatedAt:         now,
	}
}

// Stats is an aggregate view over a window of decisions.
type Stats struct {
	Total         int64
	Allowed       int64
	Denied        int64
	FailClosed    int64
	AvgLatencyMs  float64
	DenyByReason  map[string]int64
	WindowStart   time.Time
	PolicyVersion string
}

// Store persists decision records.
type Store interface {
	Append(ctx context.Context, record DecisionRecord) error

	// RecentByUser returns the newest records for a user, newest first.
	RecentByUser(ctx context.Context, userID domain.UserID, limit int) ([]DecisionRecord, error)

	// DeniesSince returns denied records decided at or after the cutoff,
	// newest first.
	DeniesSince(ctx context.Context, since time.Time, limit int) ([]DecisionRecord, error)

	// StatsSince aggregates records decided at or after the cutoff.
	StatsSince(ctx context.Context, since time.Time) (Stats, error)

	// ChainByCorrelation returns every record sharing a correlation ID,
	// oldest first, reconstructing one request's decision trail.
	ChainByCorrelation(ctx context.Context, correlationID string) ([]DecisionRecord, error)
}
