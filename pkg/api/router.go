// Package api provides the REST API HTTP server for depot.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/internal/telemetry"
	"github.com/marmos91/depot/pkg/api/auth"
	"github.com/marmos91/depot/pkg/api/handlers"
	"github.com/marmos91/depot/pkg/api/middleware"
	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/metrics"
	"github.com/marmos91/depot/pkg/store/blob"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /health/store - Detailed blob store health
//   - GET /metrics - Prometheus metrics (404 when metrics are disabled)
//   - POST /api/v1/auth/login - User authentication
//   - POST /api/v1/auth/refresh - Token refresh
//   - GET /api/v1/auth/me - Current user info
//   - /api/v1/users/* - User management (admin only except self-access)
func NewRouter(
	store *credentials.CredentialStore,
	gate *credentials.Gate,
	jwtService *auth.JWTService,
	blobStore blob.BlobStore,
	backend string,
) (http.Handler, error) {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(traceRequests)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(blobStore, store.Key(), backend)
	authHandler := handlers.NewAuthHandler(gate, store, jwtService)
	userHandler, err := handlers.NewUserHandler(store, gate, jwtService)
	if err != nil {
		return nil, err
	}

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/store", healthHandler.Store)
	})

	// Prometheus scrape endpoint - unauthenticated
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/users/me/password", userHandler.ChangeOwnPassword)

			// Self-or-admin access is enforced inside the handler
			r.Get("/users/{username}", userHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/users", userHandler.List)
				r.Post("/users", userHandler.Create)
				r.Put("/users/{username}", userHandler.Update)
				r.Delete("/users/{username}", userHandler.Delete)
				r.Post("/users/{username}/password", userHandler.ResetPassword)
			})
		})
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r, nil
}

// traceRequests opens one span per request. Skipped entirely when tracing
// is disabled, so the wrap-writer allocation is not paid on every request.
func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !telemetry.IsEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := telemetry.StartSpan(r.Context(), telemetry.SpanAPIRequest)
		defer span.End()
		span.SetAttributes(
			telemetry.HTTPMethod(r.Method),
			telemetry.HTTPRoute(r.URL.Path),
			telemetry.ClientAddr(r.RemoteAddr),
			telemetry.RequestID(chimw.GetReqID(ctx)),
		)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		span.SetAttributes(telemetry.HTTPStatus(ww.Status()))
	})
}

// isProbePath reports whether the path is hit by automated probes.
// Probe traffic is logged at DEBUG to keep INFO logs readable.
func isProbePath(path string) bool {
	return path == "/metrics" || path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level, DEBUG for probes): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimw.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			logger.KeyClientIP, r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logFn := logger.Info
		if isProbePath(r.URL.Path) {
			logFn = logger.Debug
		}
		logFn("API request completed",
			logger.KeyRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		)
	})
}
