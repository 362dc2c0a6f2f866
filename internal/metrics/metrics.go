// Package metrics exposes Prometheus counters for calculations, saves and
// report rendering.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	calculations     prometheus.Counter
	saves            *prometheus.CounterVec
	historyFallbacks prometheus.Counter
	renderFailures   prometheus.Counter
}

// New creates the counters and registers them with registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		calculations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitecon_calculations_total",
			Help: "Unit economics recomputations.",
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unitecon_saves_total",
			Help: "Saved calculations by history backend.",
		}, []string{"backend"}),
		historyFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitecon_history_fallbacks_total",
			Help: "Remote history calls that failed and fell back to the session list.",
		}),
		renderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unitecon_render_failures_total",
			Help: "Saves that completed without a rendered document.",
		}),
	}

	registerer.MustRegister(m.calculations, m.saves, m.historyFallbacks, m.renderFailures)
	return m
}

func (m *Metrics) IncCalculations() {
	if m == nil {
		return
	}
	m.calculations.Inc()
}

func (m *Metrics) IncSaves(backend string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(backend).Inc()
}

func (m *Metrics) IncHistoryFallbacks() {
	if m == nil {
		return
	}
	m.historyFallbacks.Inc()
}

func (m *Metrics) IncRenderFailures() {
	if m == nil {
		return
	}
	m.renderFailures.Inc()
}
