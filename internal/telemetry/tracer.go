package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for depot operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// Client attributes
	AttrClientAddr = "client.address"

	// HTTP/API attributes
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
	AttrRequestID  = "http.request_id"

	// User/Auth attributes
	AttrUsername    = "user.name"
	AttrAuthOutcome = "auth.outcome"

	// Credential store attributes
	AttrCredentialOp  = "credentials.operation"
	AttrCredentialKey = "credentials.key"
	AttrPasswordHash  = "credentials.format"

	// Storage backend attributes
	AttrBucket = "storage.bucket"
	AttrKey    = "storage.key"
)

// Span names for operations. Credential and blob store spans are named
// <component>.<operation> by StartCredentialSpan and StartBlobSpan.
const (
	SpanAPIRequest   = "api.request"
	SpanAuthenticate = "auth.authenticate"
)

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// HTTPMethod returns an attribute for HTTP request method
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPRoute returns an attribute for the matched route pattern
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus returns an attribute for HTTP response status code
func HTTPStatus(status int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, status)
}

// RequestID returns an attribute for the request correlation ID
func RequestID(id string) attribute.KeyValue {
	return attribute.String(AttrRequestID, id)
}

// Username returns an attribute for username
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// AuthOutcome returns an attribute for authentication outcome
func AuthOutcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrAuthOutcome, outcome)
}

// CredentialOp returns an attribute for credential store operation name
func CredentialOp(op string) attribute.KeyValue {
	return attribute.String(AttrCredentialOp, op)
}

// CredentialKey returns an attribute for the credential document key
func CredentialKey(key string) attribute.KeyValue {
	return attribute.String(AttrCredentialKey, key)
}

// PasswordFormat returns an attribute for the password hash format
func PasswordFormat(format string) attribute.KeyValue {
	return attribute.String(AttrPasswordHash, format)
}

// Bucket returns an attribute for S3 bucket name
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for blob key
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// StartCredentialSpan starts a span for a credential store operation.
func StartCredentialSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		CredentialOp(operation),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "credentials."+operation, trace.WithAttributes(allAttrs...))
}

// StartBlobSpan starts a span for a blob store operation.
func StartBlobSpan(ctx context.Context, operation string, key string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		StorageKey(key),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "blob."+operation, trace.WithAttributes(allAttrs...))
}
