package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/depot/pkg/store/blob"
)

// HealthCheckTimeout is the maximum time allowed for health check operations.
// This timeout applies to blob store probes to prevent a slow backend from
// blocking health probes indefinitely.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the blob store reachable?
//   - Store health: Detailed blob store status with probe latency
type HealthHandler struct {
	store      blob.BlobStore
	key        blob.Key
	backend    string
	instanceID string
	startTime  time.Time
}

// NewHealthHandler creates a new health handler.
//
// The store parameter may be nil, in which case readiness and store
// health checks will return unhealthy status. backend is the configured
// backend name ("memory", "filesystem", "s3", "badger") and is reported
// verbatim in the store health response.
func NewHealthHandler(store blob.BlobStore, key blob.Key, backend string) *HealthHandler {
	return &HealthHandler{
		store:      store,
		key:        key,
		backend:    backend,
		instanceID: uuid.NewString(),
		startTime:  time.Now(),
	}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running. This endpoint is designed
// for Kubernetes liveness probes and should always succeed as long as the
// HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"service":     "depot",
		"instance_id": h.instanceID,
		"started_at":  h.startTime.UTC().Format(time.RFC3339),
		"uptime":      uptime.Round(time.Second).String(),
		"uptime_sec":  int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Probes the blob store with an existence check on the credential document
// key. The document does not have to exist; only the backend has to answer.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("blob store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	if _, err := h.store.Exists(ctx, h.key); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"backend": h.backend,
	}))
}

// StoreHealth represents the health status of the blob store.
type StoreHealth struct {
	Backend string `json:"backend"`
	Key     string `json:"key"`
	Exists  bool   `json:"exists"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Store handles GET /health/store - detailed blob store health.
//
// Returns 200 OK if the backend answers the probe, 503 Service Unavailable
// otherwise. The response reports whether the credential document exists
// and how long the probe took.
func (h *HealthHandler) Store(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("blob store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	exists, err := h.store.Exists(ctx, h.key)
	latency := time.Since(start)

	health := StoreHealth{
		Backend: h.backend,
		Key:     h.key.String(),
		Exists:  exists,
		Latency: latency.Round(time.Millisecond).String(),
	}

	if err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
			Data:      health,
		})
		return
	}

	health.Status = "healthy"
	writeJSON(w, http.StatusOK, healthyResponse(health))
}
