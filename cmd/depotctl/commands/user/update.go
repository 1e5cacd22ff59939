package user

import (
	"fmt"
	"os"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/output"
	"github.com/marmos91/depot/internal/cli/prompt"
	"github.com/marmos91/depot/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	updatePassword string
	updateDigest   string
	updateFormat   string
	updateEmail    string
	updateGroups   string
)

var updateCmd = &cobra.Command{
	Use:   "update <username>",
	Short: "Replace a user's directory entry",
	Long: `Replace a user's directory entry wholesale.

The entry is replaced, not merged: fields left empty are cleared, and a
password (or digest) is always required. You will be prompted for the
password if it is not provided via flags.

Examples:
  # Move alice to new groups, clearing her email
  depotctl user update alice --password secret --groups editors

  # Update with email
  depotctl user update alice --password secret --email alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updatePassword, "password", "p", "", "Password (prompts if not provided)")
	updateCmd.Flags().StringVar(&updateDigest, "digest", "", "Precomputed password digest (stored verbatim)")
	updateCmd.Flags().StringVar(&updateFormat, "format", "", "Digest format (plain|sha256|bcrypt), required with --digest")
	updateCmd.Flags().StringVar(&updateEmail, "email", "", "Email address")
	updateCmd.Flags().StringVar(&updateGroups, "groups", "", "Comma-separated list of groups")
	updateCmd.MarkFlagsMutuallyExclusive("password", "digest")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	username := args[0]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	password := updatePassword
	if password == "" && updateDigest == "" {
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateUserRequest{
		Username:       username,
		Password:       password,
		PasswordDigest: updateDigest,
		PasswordFormat: updateFormat,
		Email:          updateEmail,
		Groups:         cmdutil.ParseCommaSeparatedList(updateGroups),
	}

	user, err := client.UpdateUser(username, req)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintResource(os.Stdout, user, SingleUserTable{*user})
	}

	cmdutil.PrintSuccess(fmt.Sprintf("User '%s' updated", user.Username))
	return nil
}
