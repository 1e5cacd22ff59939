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
	createUsername string
	createPassword string
	createDigest   string
	createFormat   string
	createEmail    string
	createGroups   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long: `Create a new user in the credential directory.

If username or password are not provided via flags, you will be
prompted to enter them interactively. Instead of a plain password you
can supply a precomputed digest with --digest and --format; the digest
is stored verbatim.

Examples:
  # Create user interactively
  depotctl user create

  # Create user with flags
  depotctl user create --username alice --password secret

  # Create user with email and groups
  depotctl user create --username bob --password secret --email bob@example.com --groups editors,readers

  # Create user from a precomputed sha256 digest
  depotctl user create --username ci-bot --digest 5e884898... --format sha256`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createUsername, "username", "u", "", "Username")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompts if not provided)")
	createCmd.Flags().StringVar(&createDigest, "digest", "", "Precomputed password digest (stored verbatim)")
	createCmd.Flags().StringVar(&createFormat, "format", "", "Digest format (plain|sha256|bcrypt), required with --digest")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Email address")
	createCmd.Flags().StringVar(&createGroups, "groups", "", "Comma-separated list of groups")
	createCmd.MarkFlagsMutuallyExclusive("password", "digest")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	interactive := !cmd.Flags().Changed("username")

	username := createUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := createPassword
	if password == "" && createDigest == "" {
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password", 8)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	email := createEmail
	if interactive && !cmd.Flags().Changed("email") {
		email, err = prompt.InputOptional("Email")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	groups := createGroups
	if interactive && !cmd.Flags().Changed("groups") {
		groups, err = prompt.Input("Groups (comma-separated)", "")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	req := &apiclient.CreateUserRequest{
		Username:       username,
		Password:       password,
		PasswordDigest: createDigest,
		PasswordFormat: createFormat,
		Email:          email,
		Groups:         cmdutil.ParseCommaSeparatedList(groups),
	}

	user, err := client.CreateUser(req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return cmdutil.PrintResource(os.Stdout, user, SingleUserTable{*user})
	}

	cmdutil.PrintSuccess(fmt.Sprintf("User '%s' created", user.Username))
	return nil
}
