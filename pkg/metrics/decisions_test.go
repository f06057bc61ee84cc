package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDecisionMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDecisionMetrics(reg)

	m.ObserveDecision("blood", 120*time.Millisecond)
	m.IncDecision("blood", "approved")
	m.IncDecision("blood", "auto_rejected")
	m.IncMatchAttempt("matched")
	m.SetStockUnits("O-", 7)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "request_decisions_total", "outcome", "approved"); err != nil {
		t.Fatalf("fetch approved: %v", err)
	} else if got != 1 {
		t.Fatalf("expected approved=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "request_decisions_total", "outcome", "auto_rejected"); err != nil {
		t.Fatalf("fetch auto_rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected auto_rejected=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "donor_match_attempts_total", "result", "matched"); err != nil {
		t.Fatalf("fetch match attempts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected matched=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "request_decision_duration_seconds", "kind", "blood"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if got, err := fetchGaugeValue(mfs, "blood_stock_units", "blood_group", "O-"); err != nil {
		t.Fatalf("fetch stock gauge: %v", err)
	} else if got != 7 {
		t.Fatalf("expected stock 7, got %f", got)
	}
}

func TestDecisionMetricsNilReceiverIsNoop(t *testing.T) {
	var m *DecisionMetrics
	m.ObserveDecision("blood", time.Second)
	m.IncDecision("blood", "approved")
	m.IncMatchAttempt("none")
	m.SetStockUnits("A+", 1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchGaugeValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetGauge().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("gauge %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
