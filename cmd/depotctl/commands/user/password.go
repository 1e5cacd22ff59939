package user

import (
	"fmt"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var resetPassword string

var passwordCmd = &cobra.Command{
	Use:   "password <username>",
	Short: "Reset a user's password",
	Long: `Reset a user's password (admin operation).

The user's other directory fields are left untouched.

Examples:
  # Reset password interactively
  depotctl user password alice

  # Reset password with flag (less secure)
  depotctl user password alice --password newsecret`,
	Args: cobra.ExactArgs(1),
	RunE: runPassword,
}

func init() {
	passwordCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "New password (prompts if not provided)")
}

func runPassword(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	password := resetPassword
	if password == "" {
		password, err = prompt.PasswordWithConfirmation("New password", "Confirm password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	if err := client.ResetUserPassword(username, password); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Password reset for user '%s'", username))
	return nil
}
