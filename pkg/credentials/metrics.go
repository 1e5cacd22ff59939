package credentials

import "time"

// Authentication outcomes reported to Metrics.
const (
	OutcomeAuthenticated = "authenticated"
	OutcomeDenied        = "denied"
	OutcomeError         = "error"
)

// Metrics receives credential store and gate events. Implementations must
// be safe for concurrent use. The prometheus package provides the
// production implementation; NopMetrics discards everything.
type Metrics interface {
	// ObserveOperation records one store operation with its duration and
	// whether it failed.
	ObserveOperation(op string, duration time.Duration, err error)

	// ObserveAuthentication records one authentication attempt outcome.
	ObserveAuthentication(outcome string)
}

// NopMetrics is the default Metrics implementation; it discards all events.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, time.Duration, error) {}
func (NopMetrics) ObserveAuthentication(string)                  {}
