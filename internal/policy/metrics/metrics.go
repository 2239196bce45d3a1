package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the policy engine.
type Metrics struct {
	// Decisions by outcome and reason class (guardrail, grant, role, scope, error).
	Decisions *prometheus.CounterVec

	// Full evaluation latency, cache hits included.
	EvaluateLatency prometheus.Histogram

	// Fail-closed conversions of internal faults.
	FailClosed prometheus.Counter

	// Decision cache traffic.
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates a Metrics instance with all policy engine metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verdict_policy_decisions_total",
			Help: "Total policy decisions by outcome and reason class",
		}, []string{"outcome", "reason_class"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "verdict_policy_evaluate_duration_seconds",
			Help:    "Duration of full policy evaluation including resolver lookups",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),

		FailClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_policy_fail_closed_total",
			Help: "Total evaluations denied due to internal errors",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_policy_decision_cache_hits_total",
			Help: "Total decision cache hits",
		}),

		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verdict_policy_decision_cache_misses_total",
			Help: "Total decision cache misses",
		}),
	}
}

// IncrementDecision records a decision outcome.
func (m *Metrics) IncrementDecision(allowed bool, reasonClass string) {
	if m != nil {
		outcome := "deny"
		if allowed {
			outcome = "allow"
		}
		m.Decisions.WithLabelValues(outcome, reasonClass).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementFailClosed records a fail-closed denial.
func (m *Metrics) IncrementFailClosed() {
	if m != nil {
		m.FailClosed.Inc()
	}
}

// IncrementCacheHit records a decision cache hit.
func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// IncrementCacheMiss records a decision cache miss.
func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
