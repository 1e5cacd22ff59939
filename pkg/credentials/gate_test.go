package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/depot/pkg/store/blob"
)

// unavailableBlobStore fails every operation, standing in for a backend
// outage.
type unavailableBlobStore struct{}

func (unavailableBlobStore) Exists(context.Context, blob.Key) (bool, error) {
	return false, blob.ErrUnavailable
}

func (unavailableBlobStore) Get(context.Context, blob.Key) ([]byte, error) {
	return nil, blob.ErrUnavailable
}

func (unavailableBlobStore) Put(context.Context, blob.Key, []byte) error {
	return blob.ErrUnavailable
}

func (unavailableBlobStore) List(context.Context, blob.Key) ([]blob.Key, error) {
	return nil, blob.ErrUnavailable
}

func TestGateAuthenticate(t *testing.T) {
	store, _ := newTestStore(t)
	gate := NewGate(store, nil)
	ctx := context.Background()

	user := User{Name: "jane", Email: "jane@example.com", Groups: []string{"readers"}}
	require.NoError(t, store.AddPassword(ctx, user, "111", FormatSHA256))

	authenticated, err := gate.Authenticate(ctx, "jane", "111")
	require.NoError(t, err)
	assert.Equal(t, "jane", authenticated.Name)
	assert.Equal(t, []string{"readers"}, authenticated.Groups)

	_, err = gate.Authenticate(ctx, "jane", "112")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = gate.Authenticate(ctx, "ghost", "x")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestGateAuthenticatePlainExactMatch(t *testing.T) {
	store, _ := newTestStore(t)
	gate := NewGate(store, nil)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, User{Name: "mark"}, "123", FormatPlain))

	_, err := gate.Authenticate(ctx, "mark", "123")
	require.NoError(t, err)

	for _, secret := range []string{"1234", "12", "", " 123"} {
		_, err := gate.Authenticate(ctx, "mark", secret)
		require.ErrorIs(t, err, ErrAuthenticationFailed, "secret %q", secret)
	}
}

func TestGateDeniesOnMalformedDocument(t *testing.T) {
	store, bs := newTestStore(t)
	gate := NewGate(store, nil)
	seedDocument(t, bs, "credentials: [broken")

	_, err := gate.Authenticate(context.Background(), "jane", "111")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.NotErrorIs(t, err, ErrMalformedDocument, "parse detail must not leak into the denial")
}

func TestGateDeniesOnUnknownStoredFormat(t *testing.T) {
	store, bs := newTestStore(t)
	gate := NewGate(store, nil)
	seedDocument(t, bs, "credentials:\n  jane:\n    pass: \"111\"\n    type: scrypt\n")

	_, err := gate.Authenticate(context.Background(), "jane", "111")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestGatePropagatesStorageUnavailability(t *testing.T) {
	store := NewCredentialStore(unavailableBlobStore{}, testDocumentKey, nil)
	gate := NewGate(store, nil)

	_, err := gate.Authenticate(context.Background(), "jane", "111")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAuthenticationFailed,
		"an outage must be distinguishable from bad credentials")
	require.ErrorIs(t, err, blob.ErrUnavailable)
}

func TestGateMetricsOutcomes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, User{Name: "jane"}, "111", FormatPlain))

	recorder := &recordingMetrics{}
	gate := NewGate(store, recorder)

	_, _ = gate.Authenticate(ctx, "jane", "111")
	_, _ = gate.Authenticate(ctx, "jane", "wrong")
	_, _ = gate.Authenticate(ctx, "ghost", "x")

	assert.Equal(t, []string{OutcomeAuthenticated, OutcomeDenied, OutcomeDenied}, recorder.outcomes)
}

type recordingMetrics struct {
	NopMetrics
	outcomes []string
}

func (m *recordingMetrics) ObserveAuthentication(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}
