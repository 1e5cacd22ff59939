package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/store/blob"
	"github.com/marmos91/depot/pkg/store/blob/memory"
)

// testSetup creates a credential store, gate and APIConfig for testing.
func testSetup(t *testing.T, port int) (*credentials.CredentialStore, *credentials.Gate, blob.BlobStore, APIConfig) {
	t.Helper()

	bs := memory.NewMemoryBlobStore()
	store := credentials.NewCredentialStore(bs, blob.Key("_credentials.yaml"), nil)
	gate := credentials.NewGate(store, nil)

	cfg := APIConfig{
		Port:         port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		JWT: JWTConfig{
			Secret:          "test-secret-key-for-testing-only-32chars",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}

	return store, gate, bs, cfg
}

func TestAPIServer_Lifecycle(t *testing.T) {
	store, gate, bs, cfg := testSetup(t, 18080)

	server, err := NewServer(cfg, store, gate, bs, "memory")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Start server in background
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Make request to health endpoint
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	// Shutdown
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Expected nil on graceful shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shutdown in time")
	}
}

func TestAPIServer_Port(t *testing.T) {
	store, gate, bs, cfg := testSetup(t, 9999)

	server, err := NewServer(cfg, store, gate, bs, "memory")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

func TestAPIServer_DefaultConfig(t *testing.T) {
	store, gate, bs, _ := testSetup(t, 0)

	cfg := APIConfig{
		// Port and timeouts not set - should use defaults
		JWT: JWTConfig{
			Secret: "test-secret-key-for-testing-only-32chars",
		},
	}

	server, err := NewServer(cfg, store, gate, bs, "memory")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if server.Port() != 8080 {
		t.Errorf("Expected default port 8080, got %d", server.Port())
	}
}

func TestAPIServer_ShortSecret(t *testing.T) {
	store, gate, bs, cfg := testSetup(t, 18082)
	cfg.JWT.Secret = "too-short"

	if _, err := NewServer(cfg, store, gate, bs, "memory"); err == nil {
		t.Fatal("Expected error for short JWT secret")
	}
}

func TestAPIServer_StopIdempotent(t *testing.T) {
	store, gate, bs, cfg := testSetup(t, 18083)

	server, err := NewServer(cfg, store, gate, bs, "memory")
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ctx := context.Background()
	if err := server.Stop(ctx); err != nil {
		t.Errorf("First Stop failed: %v", err)
	}
	if err := server.Stop(ctx); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
}
