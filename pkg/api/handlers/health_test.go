package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/depot/pkg/store/blob"
	"github.com/marmos91/depot/pkg/store/blob/memory"
)

// failingBlobStore answers every operation with ErrUnavailable.
type failingBlobStore struct{}

func (failingBlobStore) Exists(ctx context.Context, key blob.Key) (bool, error) {
	return false, blob.ErrUnavailable
}

func (failingBlobStore) Get(ctx context.Context, key blob.Key) ([]byte, error) {
	return nil, blob.ErrUnavailable
}

func (failingBlobStore) Put(ctx context.Context, key blob.Key, data []byte) error {
	return blob.ErrUnavailable
}

func (failingBlobStore) List(ctx context.Context, prefix blob.Key) ([]blob.Key, error) {
	return nil, blob.ErrUnavailable
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil, "_credentials.yaml", "memory")
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["service"] != "depot" {
		t.Errorf("Expected service 'depot', got '%s'", data["service"])
	}
}

func TestReadiness_NoStore_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil, "_credentials.yaml", "memory")
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestReadiness_StoreReachable_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(memory.NewMemoryBlobStore(), "_credentials.yaml", "memory")
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestReadiness_StoreUnavailable_Returns503(t *testing.T) {
	handler := NewHealthHandler(failingBlobStore{}, "_credentials.yaml", "s3")
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestStore_AbsentDocument_ReportsHealthy(t *testing.T) {
	handler := NewHealthHandler(memory.NewMemoryBlobStore(), "_credentials.yaml", "memory")
	req := httptest.NewRequest("GET", "/health/store", nil)
	w := httptest.NewRecorder()

	handler.Store(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}
	if data["backend"] != "memory" {
		t.Errorf("Expected backend 'memory', got '%v'", data["backend"])
	}
	if data["exists"] != false {
		t.Errorf("Expected exists false for absent document, got %v", data["exists"])
	}
	if data["status"] != "healthy" {
		t.Errorf("Expected store status 'healthy', got '%v'", data["status"])
	}
}

func TestStore_PresentDocument_ReportsExists(t *testing.T) {
	bs := memory.NewMemoryBlobStore()
	key := blob.Key("_credentials.yaml")
	if err := bs.Put(context.Background(), key, []byte("type: credentials\n")); err != nil {
		t.Fatalf("Failed to seed document: %v", err)
	}

	handler := NewHealthHandler(bs, key, "memory")
	req := httptest.NewRequest("GET", "/health/store", nil)
	w := httptest.NewRecorder()

	handler.Store(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data := resp.Data.(map[string]interface{})
	if data["exists"] != true {
		t.Errorf("Expected exists true, got %v", data["exists"])
	}
}

func TestStore_Unavailable_Returns503(t *testing.T) {
	handler := NewHealthHandler(failingBlobStore{}, "_credentials.yaml", "s3")
	req := httptest.NewRequest("GET", "/health/store", nil)
	w := httptest.NewRecorder()

	handler.Store(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", resp.Status)
	}
}
