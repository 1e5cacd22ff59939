package user

import (
	"fmt"
	"os"
	"strings"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/pkg/apiclient"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long: `List all users in the credential directory.

Examples:
  # List users as table
  depotctl user list

  # List as JSON
  depotctl user list -o json`,
	RunE: runList,
}

// UserList renders users as a table.
type UserList []apiclient.User

func (ul UserList) Headers() []string {
	return []string{"USERNAME", "EMAIL", "GROUPS"}
}

func (ul UserList) Rows() [][]string {
	rows := make([][]string, 0, len(ul))
	for _, u := range ul {
		email := cmdutil.EmptyOr(u.Email, "-")
		groups := cmdutil.EmptyOr(strings.Join(u.Groups, ", "), "-")
		rows = append(rows, []string{u.Username, email, groups})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	users, err := client.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, users, len(users) == 0, "No users found.", UserList(users))
}
