package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncCalculations()
	m.IncCalculations()
	m.IncSaves("sqlite")
	m.IncSaves("memory")
	m.IncSaves("memory")
	m.IncHistoryFallbacks()
	m.IncRenderFailures()

	if got := testutil.ToFloat64(m.calculations); got != 2 {
		t.Fatalf("expected 2 calculations, got %v", got)
	}
	if got := testutil.ToFloat64(m.saves.WithLabelValues("memory")); got != 2 {
		t.Fatalf("expected 2 memory saves, got %v", got)
	}
	if got := testutil.ToFloat64(m.saves.WithLabelValues("sqlite")); got != 1 {
		t.Fatalf("expected 1 sqlite save, got %v", got)
	}
	if got := testutil.ToFloat64(m.historyFallbacks); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}
	if got := testutil.ToFloat64(m.renderFailures); got != 1 {
		t.Fatalf("expected 1 render failure, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncCalculations()
	m.IncSaves("memory")
	m.IncHistoryFallbacks()
	m.IncRenderFailures()
}
