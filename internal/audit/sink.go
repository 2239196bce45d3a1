package audit

import (
	"context"
	"log/slog"
	"time"

	"verdict/internal/audit/metrics"
	"verdict/internal/policy/models"
	"verdict/internal/policy/subject"
	"verdict/pkg/requestcontext"
)

// Publisher forwards records to an async channel such as Kafka. Must never
// block the caller.
type Publisher interface {
	Publish(record DecisionRecord)
}

// Sink records decisions: one synchronous append to the store, one
// non-blocking hand-off to the publisher. A sink failure is an operational
// problem, not a policy one, so nothing here ever reaches the caller; the
// decision outcome stands regardless.
type Sink struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Sink.
type Option func(*Sink)

// WithPublisher wires the async publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Sink) { s.publisher = p }
}

// WithLogger sets the logger for append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sink) { s.metrics = m }
}

// NewSink constructs a sink over a store. A nil store is legal and turns the
// sink into publish-and-log only.
func NewSink(store Store, opts ...Option) *Sink {
	s := &Sink{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogDecision records one decision. Safe to call from the engine's hot path:
// it absorbs store errors and panics instead of propagating them.
func (s *Sink) LogDecision(ctx context.Context, pctx *models.PolicyContext, d models.PolicyDecision, latency time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncrementAppendFailure()
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "audit sink panicked", "panic", r, "correlation_id", d.CorrelationID)
			}
		}
	}()

	record := NewDecisionRecord(pctx, d, latency, requestcontext.Now(ctx))
	record.Device = subject.DeviceSummary(pctx.Trace.UserAgent)

	if s.store != nil {
		if err := s.store.Append(ctx, record); err != nil {
			s.metrics.IncrementAppendFailure()
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "audit append failed",
					"error", err,
					"correlation_id", record.CorrelationID,
					"user_id", record.UserID.String(),
					"endpoint", record.Endpoint,
					"allowed", record.Allowed,
					"reason", record.Reason,
				)
			}
		} else {
			s.metrics.IncrementAppend()
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(record)
	}
}
