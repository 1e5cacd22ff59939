package context

import (
	"errors"
	"fmt"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/session"
	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Long: `Delete a server context and its saved session.

Examples:
  # Delete the context named "staging"
  depotctl context delete staging

  # Delete without confirmation
  depotctl context delete staging --force`,
	Args: cobra.ExactArgs(1),
	RunE: runContextDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	contextName := args[0]

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	if _, err = store.GetContext(contextName); err != nil {
		if errors.Is(err, session.ErrContextNotFound) {
			return fmt.Errorf("context '%s' not found", contextName)
		}
		return fmt.Errorf("failed to get context: %w", err)
	}

	return cmdutil.RunDeleteWithConfirmation("Context", contextName, deleteForce, func() error {
		return store.DeleteContext(contextName)
	})
}
