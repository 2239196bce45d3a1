// Package engine orchestrates the guard and resolvers into one explainable,
// fail-closed policy decision.
package engine

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks Guard,ScopeResolver,GrantResolver,AuditSink
//go:generate mockgen -source=cache.go -destination=mocks/cache.go -package=mocks Cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdict/internal/policy/metrics"
	"verdict/internal/policy/models"
	"verdict/internal/policy/role"
	"verdict/pkg/domain"
	"verdict/pkg/requestcontext"
)

// Guard is the outer structural boundary check.
type Guard interface {
	CheckGuardrails(pctx *models.PolicyContext) string
}

// ScopeResolver validates the claimed data scope against resource ownership.
type ScopeResolver interface {
	ValidateScope(ctx context.Context, pctx *models.PolicyContext) (string, error)
}

// GrantResolver answers the two explicit-override questions.
type GrantResolver interface {
	CheckUserDeny(ctx context.Context, pctx *models.PolicyContext) (string, error)
	HasUserAllow(ctx context.Context, pctx *models.PolicyContext) (bool, error)
}

// AuditSink receives every decision together with its context and latency.
// Implementations must not fail the caller; see internal/audit.
type AuditSink interface {
	LogDecision(ctx context.Context, pctx *models.PolicyContext, d models.PolicyDecision, latency time.Duration)
}

// RoleDefaults maps a role set and operation to the baseline capability.
type RoleDefaults func(roles []string, op domain.OperationType) bool

// Engine evaluates policy contexts. It holds no request-scoped mutable state:
// one instance is safe for arbitrarily many concurrent callers.
type Engine struct {
	guard        Guard
	scopes       ScopeResolver
	grants       GrantResolver // nil means no grant subsystem wired in
	roleDefaults RoleDefaults

	cache Cache
	sink  AuditSink

	policyVersion string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithGrants wires the grant resolver. Without it, deny checks find nothing
// and allow checks return false.
func WithGrants(grants GrantResolver) Option {
	return func(e *Engine) { e.grants = grants }
}

// WithCache enables the read-through decision cache.
func WithCache(cache Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithAuditSink makes the engine forward every decision to the sink.
func WithAuditSink(sink AuditSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithPolicyVersion tags decisions with the rule-set version in effect.
func WithPolicyVersion(version string) Option {
	return func(e *Engine) {
		if version != "" {
			e.policyVersion = version
		}
	}
}

// WithLogger sets a logger for fail-closed reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRoleDefaults overrides the baseline capability table.
func WithRoleDefaults(fn RoleDefaults) Option {
	return func(e *Engine) {
		if fn != nil {
			e.roleDefaults = fn
		}
	}
}

// New constructs a policy engine. Guard and scope resolver are required;
// everything else is optional.
func New(guard Guard, scopes ScopeResolver, opts ...Option) (*Engine, error) {
	if guard == nil {
		return nil, fmt.Errorf("guard is required")
	}
	if scopes == nil {
		return nil, fmt.Errorf("scope resolver is required")
	}

	e := &Engine{
		guard:         guard,
		scopes:        scopes,
		roleDefaults:  role.HasDefaultAccess,
		policyVersion: "v1",
		tracer:        otel.Tracer("verdict/policy/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate produces the decision for one context. It never panics and never
// returns an error: any internal fault becomes DENY(policy_evaluation_error).
// The evaluation order is fixed and short-circuiting:
//
//	guardrails -> explicit deny -> role default or explicit allow -> scope
func (e *Engine) Evaluate(ctx context.Context, pctx *models.PolicyContext) (decision models.PolicyDecision) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "policy.Evaluate")
	defer func() {
		if r := recover(); r != nil {
			decision = e.failClosed(ctx, pctx, start, fmt.Errorf("panic: %v", r))
		}
		span.SetAttributes(
			attribute.Bool("policy.allowed", decision.Allowed),
			attribute.String("policy.reason", decision.Reason),
			attribute.String("policy.correlation_id", decision.CorrelationID),
		)
		span.End()

		e.metrics.IncrementDecision(decision.Allowed, models.ReasonClass(decision.Reason))
		e.metrics.ObserveEvaluateLatency(time.Since(start))
		if e.sink != nil {
			e.sink.LogDecision(ctx, pctx, decision, time.Since(start))
		}
	}()

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, pctx); ok {
			e.metrics.IncrementCacheHit()
			// Re-stamp linkage so the audit trail points at this request.
			cached.CorrelationID = pctx.Trace.CorrelationID
			return cached
		}
		e.metrics.IncrementCacheMiss()
	}

	allowed, reason, err := e.decide(ctx, pctx)
	if err != nil {
		return e.failClosed(ctx, pctx, start, err)
	}

	decision = models.NewDecision(allowed, reason, e.policyVersion, pctx.Trace.CorrelationID, requestcontext.Now(ctx))
	if e.cache != nil {
		e.cache.Set(ctx, pctx, decision)
	}
	return decision
}

// QuickCheck runs the full evaluation and returns only the boolean, for call
// sites that do not need the explanation.
func (e *Engine) QuickCheck(ctx context.Context, pctx *models.PolicyContext) bool {
	return e.Evaluate(ctx, pctx).Allowed
}

// decide implements the ordered pipeline. Denial reasons are values, not
// errors; an error here means a resolver failed and the caller fail-closes.
func (e *Engine) decide(ctx context.Context, pctx *models.PolicyContext) (bool, string, error) {
	// 1. Company-type guardrails: the hard boundary nothing overrides.
	if reason := e.guard.CheckGuardrails(pctx); reason != "" {
		return false, reason, nil
	}

	// 2. Explicit deny wins over everything else, elevated roles included.
	if e.grants != nil {
		reason, err := e.grants.CheckUserDeny(ctx, pctx)
		if err != nil {
			return false, "", err
		}
		if reason != "" {
			return false, reason, nil
		}
	}

	// 3a. Role default path.
	if e.roleDefaults(pctx.Subject.Roles, pctx.Target.Operation) {
		reason, err := e.scopes.ValidateScope(ctx, pctx)
		if err != nil {
			return false, "", err
		}
		if reason != "" {
			return false, reason, nil
		}
		return true, models.ReasonRoleDefaultAllowed, nil
	}

	// 3b. Explicit allow can extend role defaults, but still within scope.
	if e.grants != nil {
		allowed, err := e.grants.HasUserAllow(ctx, pctx)
		if err != nil {
			return false, "", err
		}
		if allowed {
			reason, err := e.scopes.ValidateScope(ctx, pctx)
			if err != nil {
				return false, "", err
			}
			if reason != "" {
				return false, reason, nil
			}
			return true, models.ReasonUserGrantExplicitAllow, nil
		}
	}

	return false, models.ReasonRoleNoDefaultAccess, nil
}

// failClosed converts an internal fault into the single fail-closed denial.
// The fault is surfaced to operators here and nowhere else; callers only ever
// see the generic reason code.
func (e *Engine) failClosed(ctx context.Context, pctx *models.PolicyContext, start time.Time, err error) models.PolicyDecision {
	if e.logger != nil {
		e.logger.ErrorContext(ctx, "policy evaluation failed closed",
			"correlation_id", pctx.Trace.CorrelationID,
			"user_id", pctx.Subject.UserID.String(),
			"endpoint", pctx.Target.Endpoint,
			"operation", pctx.Target.Operation.String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
	}
	e.metrics.IncrementFailClosed()
	return models.NewDecision(false, models.ReasonPolicyEvaluationError, e.policyVersion, pctx.Trace.CorrelationID, requestcontext.Now(ctx))
}
