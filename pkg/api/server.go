package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/pkg/api/auth"
	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/store/blob"
)

// Server provides an HTTP server for the REST API.
//
// The server exposes health check endpoints, authentication APIs and
// credential management APIs.
//
// Endpoints:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - GET /health/store: Detailed blob store health
//   - GET /metrics: Prometheus metrics
//   - POST /api/v1/auth/login: User authentication
//   - POST /api/v1/auth/refresh: Token refresh
//   - GET /api/v1/auth/me: Current user info
//   - /api/v1/users/*: User management (admin only)
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	jwtService   *auth.JWTService
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving requests.
//
// The JWT service is created internally from the config. The JWT secret must be
// configured via config.JWT.Secret or the DEPOT_API_JWT_SECRET environment variable.
//
// Parameters:
//   - config: Server configuration (port, timeouts, JWT config)
//   - store: Credential store backing the user management endpoints
//   - gate: Authentication gate backing the login endpoint
//   - blobStore: Blob store for health probes
//   - backend: Configured blob backend name, reported in health responses
//
// Returns a configured but not yet started Server, or an error if JWT configuration is invalid.
func NewServer(
	config APIConfig,
	store *credentials.CredentialStore,
	gate *credentials.Gate,
	blobStore blob.BlobStore,
	backend string,
) (*Server, error) {
	config.applyDefaults()

	// Get JWT secret from config (prefers env var)
	jwtSecret := config.GetJWTSecret()
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters; set via %s env var or config", EnvJWTSecret)
	}

	jwtConfig := auth.JWTConfig{
		Secret:          jwtSecret,
		Issuer:          "depot",
		AccessTokenTTL:  config.JWT.AccessTokenTTL,
		RefreshTokenTTL: config.JWT.RefreshTokenTTL,
	}
	jwtService, err := auth.NewJWTService(jwtConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	router, err := NewRouter(store, gate, jwtService, blobStore, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server:     server,
		jwtService: jwtService,
		config:     config,
	}, nil
}

// Start starts the API HTTP server and blocks until the context is cancelled
// or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and returns.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the server fails to start or shutdown encounters an error
func (s *Server) Start(ctx context.Context) error {
	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.config.Port)
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/health", s.config.Port),
			"ready", fmt.Sprintf("http://localhost:%d/health/ready", s.config.Port),
			"store", fmt.Sprintf("http://localhost:%d/health/store", s.config.Port),
		)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// Create new context with timeout for graceful shutdown
		// Don't use the cancelled ctx as it would cause immediate shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the API server.
//
// Stop is safe to call multiple times and safe to call concurrently with Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", "error", err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
