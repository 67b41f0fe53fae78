package store

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics holds Prometheus metrics for record store operations.
type StoreMetrics struct {
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
}

var (
	storeMetricsInstance *StoreMetrics
	storeMetricsOnce     sync.Once
)

// GetStoreMetrics returns the singleton store metrics instance.
func GetStoreMetrics() *StoreMetrics {
	storeMetricsOnce.Do(func() {
		storeMetricsInstance = newStoreMetrics()
	})
	return storeMetricsInstance
}

// MustRegister registers all store metric collectors with the given
// Prometheus registry.
func (m *StoreMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.operationDuration,
		m.errorsTotal,
	)
}

func newStoreMetrics() *StoreMetrics {
	return &StoreMetrics{
		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "confroute",
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Duration of record store operations",
				Buckets: []float64{
					.0005, .001, .005, .01,
					.05, .1, .5, 1,
				},
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "confroute",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Total number of record store errors",
			},
			[]string{"operation"},
		),
	}
}

func observeStoreOp(operation string, start time.Time) {
	GetStoreMetrics().operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func countStoreError(operation string) {
	GetStoreMetrics().errorsTotal.WithLabelValues(operation).Inc()
}
