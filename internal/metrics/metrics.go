// Package metrics exposes Prometheus counters for the resolver and risk engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry    *prometheus.Registry
	tiers       *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	verdicts    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steamroller",
			Name:      "resolver_tier_attempts_total",
			Help:      "Resolver tier attempts by intent, strategy and outcome.",
		}, []string{"intent", "strategy", "result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steamroller",
			Name:      "resolutions_total",
			Help:      "Resolution outcomes: resolved or the failure kind.",
		}, []string{"result"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "steamroller",
			Name:      "verdicts_total",
			Help:      "Steamroller verdicts by overall risk band.",
		}, []string{"overall_risk", "has_side"}),
	}
	m.registry.MustRegister(m.tiers, m.resolutions, m.verdicts)
	return m
}

// ObserveTier implements resolver.Observer.
func (m *Metrics) ObserveTier(intent, strategy string, ok bool) {
	result := "miss"
	if ok {
		result = "hit"
	}
	m.tiers.WithLabelValues(intent, strategy, result).Inc()
}

// ObserveResolution counts a finished resolution; result is "resolved" or an error kind.
func (m *Metrics) ObserveResolution(result string) {
	m.resolutions.WithLabelValues(result).Inc()
}

// ObserveVerdict counts a verdict by band.
func (m *Metrics) ObserveVerdict(overallRisk string, hasSide bool) {
	side := "false"
	if hasSide {
		side = "true"
	}
	m.verdicts.WithLabelValues(overallRisk, side).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
