package metrics

import (
	"github.com/marmos91/depot/pkg/credentials"
)

// NewCredentialMetrics creates a new Prometheus-backed credentials.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to the credential store
// and gate, which results in zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	credMetrics := metrics.NewCredentialMetrics()
//	store := credentials.NewCredentialStore(bs, key, credMetrics)
//
//	// Without metrics (zero overhead)
//	store := credentials.NewCredentialStore(bs, key, nil)
func NewCredentialMetrics() credentials.Metrics {
	if !IsEnabled() {
		return nil
	}

	if newPrometheusCredentialMetrics == nil {
		return nil
	}
	return newPrometheusCredentialMetrics()
}

// newPrometheusCredentialMetrics is implemented in
// pkg/metrics/prometheus/credentials.go. This indirection avoids import
// cycles while keeping the API clean.
var newPrometheusCredentialMetrics func() credentials.Metrics

// RegisterCredentialMetricsConstructor registers the Prometheus credential
// metrics constructor. Called by pkg/metrics/prometheus during package
// initialization.
func RegisterCredentialMetricsConstructor(constructor func() credentials.Metrics) {
	newPrometheusCredentialMetrics = constructor
}
