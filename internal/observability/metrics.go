package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the AI layer. A nil
// *Metrics is valid and turns every record method into a no-op, so
// instrumentation stays optional.
type Metrics struct {
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	remoteAttempts    prometheus.Counter
	remoteFailures    *prometheus.CounterVec
	remoteLatency     prometheus.Histogram
	fallbacks         *prometheus.CounterVec
	budgetRejections  prometheus.Counter
	responsesBySource *prometheus.CounterVec
}

// NewMetrics creates and registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_cache_hits_total",
			Help: "Cache hits by tier (exact, semantic).",
		}, []string{"tier"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_cache_misses_total",
			Help: "Cache misses by tier (exact, semantic).",
		}, []string{"tier"}),
		remoteAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_remote_attempts_total",
			Help: "Remote generation attempts, including retries.",
		}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_remote_failures_total",
			Help: "Remote generation failures by error type.",
		}, []string{"type"}),
		remoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coach_remote_latency_seconds",
			Help:    "Latency of successful remote generations.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_fallbacks_total",
			Help: "Fallback responses served, by feature.",
		}, []string{"feature"}),
		budgetRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_budget_rejections_total",
			Help: "Remote calls short-circuited by the usage budget.",
		}),
		responsesBySource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_responses_total",
			Help: "Responses returned by source (local, cache, remote, fallback).",
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.cacheHits, m.cacheMisses,
		m.remoteAttempts, m.remoteFailures, m.remoteLatency,
		m.fallbacks, m.budgetRejections, m.responsesBySource,
	)
	return m
}

// CacheHit records a hit on the given tier.
func (m *Metrics) CacheHit(tier string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(tier).Inc()
}

// CacheMiss records a miss on the given tier.
func (m *Metrics) CacheMiss(tier string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(tier).Inc()
}

// RemoteAttempt records one dispatch attempt.
func (m *Metrics) RemoteAttempt() {
	if m == nil {
		return
	}
	m.remoteAttempts.Inc()
}

// RemoteFailure records a failed dispatch by error type.
func (m *Metrics) RemoteFailure(errType string) {
	if m == nil {
		return
	}
	m.remoteFailures.WithLabelValues(errType).Inc()
}

// RemoteLatency records the latency of a successful generation.
func (m *Metrics) RemoteLatency(seconds float64) {
	if m == nil {
		return
	}
	m.remoteLatency.Observe(seconds)
}

// Fallback records a fallback response for the feature.
func (m *Metrics) Fallback(feature string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(feature).Inc()
}

// BudgetRejection records a budget short-circuit.
func (m *Metrics) BudgetRejection() {
	if m == nil {
		return
	}
	m.budgetRejections.Inc()
}

// Response records the final source of one public operation.
func (m *Metrics) Response(source string) {
	if m == nil {
		return
	}
	m.responsesBySource.WithLabelValues(source).Inc()
}
