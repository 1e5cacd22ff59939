package commands

import (
	"fmt"

	"github.com/marmos91/depot/internal/cli/session"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Long: `Clear the stored session for the current context.

This removes the access and refresh tokens but keeps the server URL
and context configuration for easy re-login.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		return fmt.Errorf("not logged in - no current context")
	}

	if err := store.ClearCurrentContext(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Printf("Logged out from context: %s\n", contextName)
	return nil
}
