package audit

import (
	"context"
	"time"

	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// QueryService is the read surface over recorded decisions, for operator and
// compliance tooling. It validates inputs and clamps limits; it never writes.
type QueryService struct {
	store Store
}

// NewQueryService constructs the query surface.
func NewQueryService(store Store) (*QueryService, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "audit store is required")
	}
	return &QueryService{store: store}, nil
}

// RecentByUser returns a user's newest decisions.
func (q *QueryService) RecentByUser(ctx context.Context, userID domain.UserID, limit int) ([]DecisionRecord, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	return q.store.RecentByUser(ctx, userID, clampLimit(limit))
}

// DeniesSince returns denied decisions within the window, newest first.
func (q *QueryService) DeniesSince(ctx context.Context, since time.Time, limit int) ([]DecisionRecord, error) {
	if since.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "window start is required")
	}
	return q.store.DeniesSince(ctx, since, clampLimit(limit))
}

// StatsSince aggregates decisions within the window.
func (q *QueryService) StatsSince(ctx context.Context, since time.Time) (Stats, error) {
	if since.IsZero() {
		return Stats{}, dErrors.New(dErrors.CodeInvalidInput, "window start is required")
	}
	return q.store.StatsSince(ctx, since)
}

// ChainByCorrelation reconstructs a request's decision trail.
func (q *QueryService) ChainByCorrelation(ctx context.Context, correlationID string) ([]DecisionRecord, error) {
	if correlationID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "correlation id is required")
	}
	return q.store.ChainByCorrelation(ctx, correlationID)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
