package context

import (
	"errors"
	"fmt"

	"github.com/marmos91/depot/internal/cli/session"
	"github.com/spf13/cobra"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different context",
	Long: `Switch the active context used for subsequent commands.

Examples:
  # Switch to the context named "production"
  depotctl context use production`,
	Args: cobra.ExactArgs(1),
	RunE: runContextUse,
}

func runContextUse(cmd *cobra.Command, args []string) error {
	contextName := args[0]

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	if err := store.UseContext(contextName); err != nil {
		if errors.Is(err, session.ErrContextNotFound) {
			return fmt.Errorf("context '%s' not found\n\n"+
				"List available contexts:\n"+
				"  depotctl context list", contextName)
		}
		return fmt.Errorf("failed to switch context: %w", err)
	}

	fmt.Printf("Switched to context: %s\n", contextName)
	return nil
}
