package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	registry         *prometheus.Registry
	derivations      prometheus.Counter
	batches          prometheus.Gauge
	unmatchedCases   prometheus.Gauge
	overdrawnBatches prometheus.Gauge
	requests         *prometheus.CounterVec
}

// New registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		derivations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avitrack",
			Name:      "inventory_derivations_total",
			Help:      "Inventory derivations performed.",
		}),
		batches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "avitrack",
			Name:      "inventory_batches",
			Help:      "Batches in the latest derivation.",
		}),
		unmatchedCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "avitrack",
			Name:      "inventory_unmatched_cases",
			Help:      "Isolated treatment cases referencing unknown batches in the latest derivation.",
		}),
		overdrawnBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "avitrack",
			Name:      "inventory_overdrawn_batches",
			Help:      "Batches with a negative healthy count in the latest derivation.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avitrack",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(m.derivations, m.batches, m.unmatchedCases, m.overdrawnBatches, m.requests)
	return m
}

// ObserveDerivation records the outcome of one inventory derivation.
func (m *Metrics) ObserveDerivation(batches, unmatched, overdrawn int) {
	m.derivations.Inc()
	m.batches.Set(float64(batches))
	m.unmatchedCases.Set(float64(unmatched))
	m.overdrawnBatches.Set(float64(overdrawn))
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string) {
	m.requests.WithLabelValues(method, route, status).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
