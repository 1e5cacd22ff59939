package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Registry initialization is once-only process-wide, so the before/after
// behavior has to be checked in a single ordered test.
func TestRegistryLifecycle(t *testing.T) {
	// Before initialization: metrics are disabled
	if IsEnabled() {
		t.Skip("registry already initialized by another test")
	}

	assert.Nil(t, GetRegistry())
	assert.Nil(t, NewCredentialMetrics())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// After initialization: registry serves the standard collectors
	InitRegistry()
	require.True(t, IsEnabled())
	require.NotNil(t, GetRegistry())

	// Second call is a no-op, not a panic
	InitRegistry()

	rec = httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewCredentialMetricsWithoutConstructor(t *testing.T) {
	InitRegistry()

	// The prometheus subpackage is deliberately not imported here, so no
	// constructor is registered and the factory degrades to nil.
	if newPrometheusCredentialMetrics == nil {
		assert.Nil(t, NewCredentialMetrics())
	}
}
