package user

import (
	"fmt"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/prompt"
	"github.com/marmos91/depot/internal/cli/session"
	"github.com/spf13/cobra"
)

var (
	currentPassword string
	newPassword     string
)

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your own password",
	Long: `Change your own password.

The server issues fresh tokens after the change and the stored session
is updated with them.

Examples:
  # Change password interactively
  depotctl user change-password

  # Change password with flags (less secure)
  depotctl user change-password --current oldpass --new newpass`,
	RunE: runChangePassword,
}

func init() {
	changePasswordCmd.Flags().StringVarP(&currentPassword, "current", "c", "", "Current password (prompts if not provided)")
	changePasswordCmd.Flags().StringVarP(&newPassword, "new", "n", "", "New password (prompts if not provided)")
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	current := currentPassword
	if current == "" {
		current, err = prompt.Password("Current password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	newPwd := newPassword
	if newPwd == "" {
		newPwd, err = prompt.PasswordWithConfirmation("New password", "Confirm new password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	tokens, err := client.ChangeOwnPassword(current, newPwd)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return fmt.Errorf("failed to update stored session: %w", err)
	}

	cmdutil.PrintSuccess("Password changed successfully")
	return nil
}
