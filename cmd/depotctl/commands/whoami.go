package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/output"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated user",
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	user, err := client.GetCurrentUser()
	if err != nil {
		return fmt.Errorf("failed to fetch current user: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	if format != output.FormatTable {
		table := output.NewTableData("USERNAME")
		return cmdutil.PrintResource(os.Stdout, user, table)
	}

	pairs := [][2]string{
		{"Username", user.Username},
		{"Email", cmdutil.EmptyOr(user.Email, "-")},
		{"Groups", cmdutil.EmptyOr(strings.Join(user.Groups, ", "), "-")},
	}
	return output.SimpleTable(os.Stdout, pairs)
}
