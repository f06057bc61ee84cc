package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics records outcomes of the admin review pipeline.
type DecisionMetrics struct {
	duration  *prometheus.HistogramVec
	decisions *prometheus.CounterVec
	matches   *prometheus.CounterVec
	stock     *prometheus.GaugeVec
}

// NewDecisionMetrics registers the review metrics on the provided registerer.
func NewDecisionMetrics(reg prometheus.Registerer) *DecisionMetrics {
	if reg == nil {
		return &DecisionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_decision_duration_seconds",
		Help:    "Duration of donation and blood request decisions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "request_decisions_total",
		Help: "Request decisions by kind and outcome.",
	}, []string{"kind", "outcome"})
	matches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donor_match_attempts_total",
		Help: "Donor matching fallback attempts by result.",
	}, []string{"result"})
	stock := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blood_stock_units",
		Help: "Current stock units per blood group.",
	}, []string{"blood_group"})
	reg.MustRegister(duration, decisions, matches, stock)
	return &DecisionMetrics{
		duration:  duration,
		decisions: decisions,
		matches:   matches,
		stock:     stock,
	}
}

// ObserveDecision records how long a decision took for the given request kind.
func (d *DecisionMetrics) ObserveDecision(kind string, duration time.Duration) {
	if d == nil || d.duration == nil {
		return
	}
	d.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncDecision increments the decision counter for a kind/outcome pair.
func (d *DecisionMetrics) IncDecision(kind, outcome string) {
	if d == nil || d.decisions == nil {
		return
	}
	d.decisions.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// IncMatchAttempt increments the donor matching counter for a result.
func (d *DecisionMetrics) IncMatchAttempt(result string) {
	if d == nil || d.matches == nil {
		return
	}
	d.matches.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetStockUnits publishes the current unit count for a blood group.
func (d *DecisionMetrics) SetStockUnits(bloodGroup string, units int) {
	if d == nil || d.stock == nil {
		return
	}
	d.stock.WithLabelValues(normalizeLabel(bloodGroup)).Set(float64(units))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
