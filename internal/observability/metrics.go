// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Calculation metrics
	CalculationsTotal   *prometheus.CounterVec
	RejectionsTotal     *prometheus.CounterVec
	CalculationDuration *prometheus.HistogramVec
	SimulatedDays       prometheus.Counter
	LadderLevels        prometheus.Histogram

	// Transport metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Storage metrics
	StoreErrors *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers all metrics on reg. A nil reg uses a fresh registry, which
// keeps tests from colliding on the global one.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "fraksi"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		CalculationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calc",
			Name:      "calculations_total",
			Help:      "Total number of calculations by operation",
		}, []string{"operation"}),
		RejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calc",
			Name:      "rejections_total",
			Help:      "Total number of rejected calculations by operation and kind",
		}, []string{"operation", "kind"}),
		CalculationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "calc",
			Name:      "duration_seconds",
			Help:      "Calculation latency by operation",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}, []string{"operation"}),
		SimulatedDays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "days_total",
			Help:      "Total number of simulated trading days",
		}),
		LadderLevels: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ladder",
			Name:      "levels",
			Help:      "Number of price levels per ladder",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 5000},
		}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Current number of open WebSocket connections",
		}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "messages_total",
			Help:      "Total number of WebSocket messages by type",
		}, []string{"type"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total number of preference store errors by operation",
		}, []string{"operation"}),
		gatherer: reg,
	}
}

// ObserveCalculation records the outcome of one calculation. kind is empty on success.
func (m *Metrics) ObserveCalculation(operation, kind string, elapsed time.Duration) {
	m.CalculationsTotal.WithLabelValues(operation).Inc()
	m.CalculationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if kind != "" {
		m.RejectionsTotal.WithLabelValues(operation, kind).Inc()
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
