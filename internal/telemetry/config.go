package telemetry

// Config selects the trace backend and sampling behaviour.
type Config struct {
	// Enabled turns tracing on. Everything else is ignored when false.
	Enabled bool

	// ServiceName and ServiceVersion identify this process in the backend.
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint string

	// Insecure disables TLS on the collector connection.
	Insecure bool

	// SampleRate is the fraction of traces to keep, between 0.0 and 1.0.
	SampleRate float64
}

// DefaultConfig returns the configuration used when no telemetry section
// is present: tracing off, local collector, full sampling.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "depot",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
