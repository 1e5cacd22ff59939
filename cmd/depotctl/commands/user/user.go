// Package user implements user management commands for depotctl.
package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for user management.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Manage users in the depot credential directory.

User commands let you create, list, update, and delete users. Most of
these operations require admin privileges.

Examples:
  # List all users
  depotctl user list

  # Create a new user interactively
  depotctl user create

  # Create a user with flags
  depotctl user create --username alice --password secret

  # Delete a user
  depotctl user delete alice`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(passwordCmd)
	Cmd.AddCommand(changePasswordCmd)
}
