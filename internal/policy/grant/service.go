package grant

import (
	"context"
	"log/slog"
	"time"

	"verdict/pkg/attrs"
	"verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

// DecisionCache is the slice of the engine's cache the admin flows need:
// any grant change must drop the affected user's cached decisions, or a
// revoked grant keeps deciding until the TTL runs out.
type DecisionCache interface {
	InvalidateUser(ctx context.Context, userID domain.UserID) error
}

// Service is the administrative write surface for grants. The decision path
// never goes through here; it reads via Resolver.
type Service struct {
	store  Store
	cache  DecisionCache
	logger *slog.Logger
	clock  Clock
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithDecisionCache wires cache invalidation into grant changes.
func WithDecisionCache(cache DecisionCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithServiceLogger sets the audit logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithServiceClock sets the clock function for testability.
func WithServiceClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs the grant admin service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "grant store is required")
	}
	s := &Service{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create validates, persists, and activates a new grant, then drops the
// user's cached decisions so the override takes effect immediately.
func (s *Service) Create(ctx context.Context, userID domain.UserID, endpoint string, op domain.OperationType, typ domain.PermissionType, expiresAt *time.Time) (*Grant, error) {
	g, err := NewGrant(userID, endpoint, op, typ, expiresAt, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "create grant", err)
	}

	s.invalidate(ctx, userID)
	s.logAudit(ctx, "grant_created",
		"grant_id", g.ID.String(),
		"user_id", userID.String(),
		"endpoint", endpoint,
		"operation", op.String(),
		"type", string(typ),
	)
	return g, nil
}

// Revoke marks a grant revoked and drops the user's cached decisions.
func (s *Service) Revoke(ctx context.Context, id domain.GrantID, userID domain.UserID) error {
	if err := s.store.Revoke(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.logAudit(ctx, "grant_revoked",
		"grant_id", id.String(),
		"user_id", userID.String(),
	)
	return nil
}

// List returns a user's grants, most recent first.
func (s *Service) List(ctx context.Context, userID domain.UserID) ([]*Grant, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) invalidate(ctx context.Context, userID domain.UserID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "decision cache invalidation failed",
			"user_id", userID.String(), "error", err)
	}
}

// logAudit writes a structured audit line enriched with the request ID and a
// compact subject extracted from the attribute list.
func (s *Service) logAudit(ctx context.Context, event string, attrList ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	args := append(attrList, "event", event, "subject", auditSubject(attrList), "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func auditSubject(attrList []any) string {
	for _, key := range []string{"user_id", "grant_id"} {
		if val := attrs.ExtractString(attrList, key); val != "" {
			return val
		}
	}
	return ""
}
