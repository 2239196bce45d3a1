package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit pipeline.
type Metrics struct {
	// Records appended to durable storage.
	Appends prometheus.Counter

	// Append failures. The decision already returned when these happen, so
	// they are only visible here and in logs.
	AppendFailures prometheus.Counter

	// Records handed to the async publisher.
	Published prometheus.Counter

	// Records dropped because the publish buffer was full.
	Dropped prometheus.Counter

	// Publish attempts that failed at the broker.
	PublishFailures prometheus.Counter
}

// New creates a Metrics instance with all audit metrics registered.
func New() *Metrics {
	return &Metrics{
		Appends: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_audit_appends_total",
			Help: "Total decision records appended to storage",
		}),
		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_audit_append_failures_total",
			Help: "Total decision record append failures",
		}),
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_audit_published_total",
			Help: "Total decision records enqueued for async publishing",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_audit_dropped_total",
			Help: "Total decision records dropped from a full publish buffer",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_audit_publish_failures_total",
			Help: "Total broker publish failures",
		}),
	}
}

func (m *Metrics) IncrementAppend() {
	if m != nil {
		m.Appends.Inc()
	}
}

func (m *Metrics) IncrementAppendFailure() {
	if m != nil {
		m.AppendFailures.Inc()
	}
}

func (m *Metrics) IncrementPublished() {
	if m != nil {
		m.Published.Inc()
	}
}

func (m *Metrics) IncrementDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
