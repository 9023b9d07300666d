// Package metrics exposes prometheus collectors of the authenticated pipeline.
// Collectors are registered per instance so that isolated sessions do not share counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authsession"

// Metrics groups the collectors; a nil *Metrics records nothing
type Metrics struct {
	RefreshTotal       *prometheus.CounterVec
	RefreshQueuedTotal prometheus.Counter
	RefreshDuration    prometheus.Histogram
	TerminalTotal      *prometheus.CounterVec
	IdentityFetchTotal *prometheus.CounterVec
}

// New registers collectors on reg; a nil reg creates unregistered collectors
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_total",
				Help:      "Token refresh calls by outcome",
			},
			[]string{"outcome"},
		),
		RefreshQueuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_queued_total",
				Help:      "Requests parked while a refresh was in flight",
			},
		),
		RefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "refresh_duration_seconds",
				Help:      "Token refresh call duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		TerminalTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "terminal_total",
				Help:      "Terminal authentication failures by kind",
			},
			[]string{"kind"},
		),
		IdentityFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "identity_fetch_total",
				Help:      "Current user fetches by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Refreshed records a settled refresh call
func (m *Metrics) Refreshed(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(outcome(err)).Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
}

// Queued records a parked request
func (m *Metrics) Queued() {
	if m == nil {
		return
	}
	m.RefreshQueuedTotal.Inc()
}

// Terminal records a terminal failure
func (m *Metrics) Terminal(kind string) {
	if m == nil {
		return
	}
	m.TerminalTotal.WithLabelValues(kind).Inc()
}

// IdentityFetched records a settled identity fetch
func (m *Metrics) IdentityFetched(err error) {
	if m == nil {
		return
	}
	m.IdentityFetchTotal.WithLabelValues(outcome(err)).Inc()
}
