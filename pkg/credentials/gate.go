package credentials

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/internal/telemetry"
)

// ErrAuthenticationFailed is the single denial error returned by
// Gate.Authenticate. It deliberately does not distinguish an unknown user
// from a wrong secret, a malformed document or an unsupported stored
// format; callers see only authenticated or denied.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Gate answers authentication queries against a credential store. It is
// the only consumer of stored credential material; everything else sees
// users without digests.
type Gate struct {
	store   *CredentialStore
	metrics Metrics
}

// NewGate creates an authentication gate over a credential store. A nil
// metrics hook disables instrumentation.
func NewGate(store *CredentialStore, metrics Metrics) *Gate {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Gate{store: store, metrics: metrics}
}

// Authenticate verifies a name/secret pair and returns the authenticated
// user, or ErrAuthenticationFailed on denial.
//
// A corrupt document or a stored credential in an unknown format denies
// this attempt instead of erroring, so one bad entry never takes
// authentication down for every caller. Storage unavailability is the one
// failure that propagates as its own error, since denying on it would
// misreport an outage as bad credentials.
func (g *Gate) Authenticate(ctx context.Context, name, secret string) (*User, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanAuthenticate)
	defer span.End()
	span.SetAttributes(telemetry.Username(name))

	user, cred, err := g.store.findWithCredential(ctx, name)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrMalformedDocument) {
			if errors.Is(err, ErrMalformedDocument) {
				logger.WarnCtx(ctx, "Denying authentication against malformed credential document",
					logger.KeyUser, name,
					logger.KeyError, err.Error())
			}
			return nil, g.deny(span)
		}
		span.SetAttributes(telemetry.AuthOutcome(OutcomeError))
		telemetry.RecordError(ctx, err)
		g.metrics.ObserveAuthentication(OutcomeError)
		return nil, fmt.Errorf("authenticating %q: %w", name, err)
	}

	if !Verify(secret, cred.Digest, cred.Format) {
		return nil, g.deny(span)
	}

	logger.DebugCtx(ctx, "User authenticated",
		logger.KeyUser, user.Name,
		logger.KeyFormat, string(cred.Format))
	span.SetAttributes(telemetry.AuthOutcome(OutcomeAuthenticated))
	g.metrics.ObserveAuthentication(OutcomeAuthenticated)
	return &user, nil
}

// deny records a denied attempt and returns the uniform denial error.
func (g *Gate) deny(span trace.Span) error {
	span.SetAttributes(telemetry.AuthOutcome(OutcomeDenied))
	g.metrics.ObserveAuthentication(OutcomeDenied)
	return ErrAuthenticationFailed
}
