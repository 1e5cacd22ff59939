package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/marmos91/depot/pkg/api"
	"github.com/marmos91/depot/pkg/config"
	"github.com/marmos91/depot/pkg/credentials"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Initialize a depot configuration file with generated secrets.

By default the configuration file is created at $XDG_CONFIG_HOME/depot/config.yaml.
Use --config to specify a custom path.

A random admin password is generated, printed once, and stored in the
config only as a bcrypt digest. A random JWT secret is generated for
development use.

Examples:
  # Initialize with default location
  depot init

  # Initialize with custom path
  depot init --config /etc/depot/config.yaml

  # Force overwrite existing config
  depot init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	cfg := config.GetDefaultConfig()

	jwtSecret, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.API.JWT.Secret = jwtSecret

	adminPassword, err := randomHex(16)
	if err != nil {
		return fmt.Errorf("failed to generate admin password: %w", err)
	}
	digest, err := credentials.Hash(adminPassword, credentials.FormatBcrypt)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	cfg.Admin.PasswordHash = digest
	cfg.Admin.PasswordFormat = string(credentials.FormatBcrypt)

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nGenerated admin credentials (shown only once):")
	fmt.Printf("  Username: %s\n", cfg.Admin.Username)
	fmt.Printf("  Password: %s\n", adminPassword)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: depot start")
	fmt.Printf("  3. Login with: depotctl login --server http://localhost:%d --username %s\n", cfg.API.Port, cfg.Admin.Username)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random JWT secret has been generated for development use.")
	fmt.Println("  For production, generate a secure secret and use an environment variable:")
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", api.EnvJWTSecret)

	return nil
}

// randomHex returns n bytes of entropy hex encoded (2n characters).
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
