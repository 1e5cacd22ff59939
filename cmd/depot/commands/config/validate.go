package config

import (
	"fmt"

	"github.com/marmos91/depot/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the depot configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate the default config
  depot config validate

  # Validate a specific config file
  depot config validate --config /etc/depot/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if !cfg.API.HasJWTSecret() {
		warnings = append(warnings, "JWT secret not configured - API authentication will fail")
	}
	if cfg.Admin.PasswordHash == "" {
		warnings = append(warnings, "No admin password hash configured - no admin user will be bootstrapped")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Storage backend: %s\n", cfg.Storage.Backend)
	fmt.Printf("  API port:        %d\n", cfg.API.Port)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
