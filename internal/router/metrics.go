package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RouterMetrics holds Prometheus metrics for dispatch operations.
type RouterMetrics struct {
	dispatchesTotal    *prometheus.CounterVec
	dispatchDuration   *prometheus.HistogramVec
	handlersRegistered prometheus.Gauge
}

var (
	routerMetricsInstance *RouterMetrics
	routerMetricsOnce     sync.Once
)

// getRouterMetrics returns the singleton router metrics instance.
func getRouterMetrics() *RouterMetrics {
	routerMetricsOnce.Do(func() {
		routerMetricsInstance = newRouterMetrics()
	})
	return routerMetricsInstance
}

// GetRouterMetrics returns the singleton router metrics instance.
func GetRouterMetrics() *RouterMetrics {
	return getRouterMetrics()
}

// MustRegister registers all router metric collectors with the given
// Prometheus registry. promauto registers metrics with the default
// global registry, but the daemon serves /metrics from a custom
// registry; calling MustRegister bridges the two.
func (m *RouterMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.dispatchesTotal,
		m.dispatchDuration,
		m.handlersRegistered,
	)
}

func newRouterMetrics() *RouterMetrics {
	return &RouterMetrics{
		dispatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "confroute",
				Subsystem: "router",
				Name:      "dispatches_total",
				Help:      "Total number of dispatch operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		dispatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "confroute",
				Subsystem: "router",
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of dispatch operations",
				Buckets: []float64{
					.0001, .0005, .001, .005,
					.01, .05, .1, .5, 1,
				},
			},
			[]string{"operation"},
		),
		handlersRegistered: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "confroute",
				Subsystem: "router",
				Name:      "handlers_registered",
				Help:      "Current number of registered handlers",
			},
		),
	}
}
