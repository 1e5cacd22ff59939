package logger

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that logs
// aggregate and query cleanly regardless of which component emitted them.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// Request correlation
	KeyRequestID = "request_id" // API request ID
	KeyClientIP  = "client_ip"  // Client IP address

	// Credential store operations
	KeyUser      = "user"      // User name involved in the operation
	KeyOperation = "operation" // Operation name: list, find, add, remove, authenticate
	KeyFormat    = "format"    // Password hash format
	KeyBackend   = "backend"   // Blob store backend: memory, filesystem, s3, badger
	KeyKey       = "key"       // Blob store object key

	// Outcome
	KeyError      = "error"       // Error message
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
)
