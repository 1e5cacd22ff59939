// Package prometheus contains the Prometheus implementations of the metric
// interfaces consumed by depot components. Importing this package wires the
// implementations into pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/metrics"
)

func init() {
	metrics.RegisterCredentialMetricsConstructor(NewCredentialMetrics)
}

// credentialMetrics is the Prometheus implementation of credentials.Metrics.
type credentialMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	authAttempts      *prometheus.CounterVec
}

// NewCredentialMetrics creates a new Prometheus-backed credentials.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewCredentialMetrics() credentials.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &credentialMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_credentials_operations_total",
				Help: "Total number of credential store operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "depot_credentials_operation_duration_milliseconds",
				Help: "Duration of credential store operations in milliseconds",
				Buckets: []float64{
					1,    // 1ms - memory backend
					5,    // 5ms - local filesystem
					10,   // 10ms
					50,   // 50ms - object storage round trip
					100,  // 100ms
					500,  // 500ms
					1000, // 1s - slow backend or large document
					5000, // 5s
				},
			},
			[]string{"operation"},
		),
		authAttempts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "depot_auth_attempts_total",
				Help: "Total number of authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *credentialMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *credentialMetrics) ObserveAuthentication(outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(outcome).Inc()
}
