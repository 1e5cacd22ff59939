package config

import (
	"os"

	"github.com/marmos91/depot/internal/cli/output"
	"github.com/marmos91/depot/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective depot configuration after defaults and
environment overrides are applied.

By default outputs YAML. Use --output to change the format.

Examples:
  # Show config as YAML
  depot config show

  # Show as JSON
  depot config show --output json

  # Show a specific config file
  depot config show --config /etc/depot/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}
