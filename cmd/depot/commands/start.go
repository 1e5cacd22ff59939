package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/internal/telemetry"
	"github.com/marmos91/depot/pkg/api"
	"github.com/marmos91/depot/pkg/config"
	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/metrics"
	"github.com/spf13/cobra"

	// Register prometheus-backed metric constructors.
	_ "github.com/marmos91/depot/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the depot server",
	Long: `Start the depot server with the REST API for credential management.

The server loads its configuration from the config file, environment
variables (DEPOT_*), and built-in defaults.

Examples:
  # Start with the default config location
  depot start

  # Start with a custom config
  depot start --config /etc/depot/config.yaml

  # Override settings via environment
  DEPOT_LOGGING_LEVEL=DEBUG depot start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "depot",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err.Error())
		}
	}()

	logger.Info("Configuration loaded", "source", configSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}

	// Metrics must be enabled before the stores are created so that the
	// prometheus-backed collectors are actually registered.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = startMetricsServer(cfg.Metrics.Port)
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	blobStore, err := config.CreateBlobStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}
	logger.Info("Blob store ready", "backend", cfg.Storage.Backend, "credentials_key", cfg.Storage.CredentialsKey)

	credMetrics := metrics.NewCredentialMetrics()
	store := config.CreateCredentialStore(cfg.Storage, blobStore, credMetrics)
	gate := credentials.NewGate(store, credMetrics)

	if err := ensureAdminUser(ctx, store, cfg.Admin); err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}

	apiServer, err := api.NewServer(cfg.API, store, gate, blobStore, cfg.Storage.Backend)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}
	logger.Info("API server configured", "port", cfg.API.Port)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", logger.KeyError, err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", logger.KeyError, err.Error())
			return err
		}
		logger.Info("Server stopped")
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	return nil
}

// startMetricsServer serves the prometheus registry on its own port.
func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", logger.KeyError, err.Error())
		}
	}()

	return server
}

// ensureAdminUser registers the configured admin user in the credential
// document if it is not present yet. An existing entry is never
// overwritten, so password changes made through the API survive restarts.
func ensureAdminUser(ctx context.Context, store *credentials.CredentialStore, admin config.AdminConfig) error {
	if admin.PasswordHash == "" {
		logger.Warn("No admin password hash configured, skipping admin bootstrap",
			"hint", "run 'depot init' to generate one")
		return nil
	}

	format := credentials.PasswordFormat(admin.PasswordFormat)
	if !format.IsValid() {
		return fmt.Errorf("invalid admin password format: %q", admin.PasswordFormat)
	}

	_, err := store.Find(ctx, admin.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, credentials.ErrUserNotFound) {
		return err
	}

	user := credentials.User{
		Name:   admin.Username,
		Email:  admin.Email,
		Groups: admin.Groups,
	}
	if err := store.Add(ctx, user, admin.PasswordHash, format); err != nil {
		return err
	}

	logger.Info("Admin user registered", logger.KeyUser, admin.Username, "groups", admin.Groups)
	return nil
}

// configSource describes where the configuration was loaded from.
func configSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
