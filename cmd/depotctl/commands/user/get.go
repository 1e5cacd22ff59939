package user

import (
	"fmt"
	"os"
	"strings"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Get user details",
	Long: `Get detailed information about a user.

Examples:
  # Get user details as table
  depotctl user get alice

  # Get as JSON
  depotctl user get alice -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleUserTable renders one user as a field/value table.
type SingleUserTable []apiclient.User

func (ul SingleUserTable) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

func (ul SingleUserTable) Rows() [][]string {
	if len(ul) == 0 {
		return nil
	}
	u := ul[0]
	return [][]string{
		{"Username", u.Username},
		{"Email", cmdutil.EmptyOr(u.Email, "-")},
		{"Groups", cmdutil.EmptyOr(strings.Join(u.Groups, ", "), "-")},
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	user, err := client.GetUser(username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, user, SingleUserTable{*user})
}
