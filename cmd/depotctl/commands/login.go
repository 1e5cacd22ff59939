package commands

import (
	"fmt"
	"net/url"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/prompt"
	"github.com/marmos91/depot/internal/cli/session"
	"github.com/marmos91/depot/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	loginServer   string
	loginUsername string
	loginPassword string
	loginContext  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with a depot server",
	Long: `Authenticate with a depot server and store the session.

On first login you must specify the server URL. Subsequent logins reuse
the stored server URL unless overridden.

Examples:
  # First login to a server
  depotctl login --server http://localhost:8080 --username admin

  # Login with password on the command line (less secure)
  depotctl login --server http://localhost:8080 -u admin -p secret

  # Re-login to the stored server
  depotctl login`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (required on first login)")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
	loginCmd.Flags().StringVar(&loginContext, "context", "", "Context name to store the session under")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	serverURL := loginServer
	if serverURL == "" {
		ctx, err := store.GetCurrentContext()
		if err != nil || ctx.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify the server URL:\n" +
				"  depotctl login --server http://localhost:8080")
		}
		serverURL = ctx.ServerURL
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "http"
		serverURL = parsedURL.String()
	}

	username := loginUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	password := loginPassword
	if password == "" {
		password, err = prompt.Password("Password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	client := apiclient.New(serverURL)

	fmt.Printf("Logging in to %s as %s...\n", serverURL, username)
	tokens, err := client.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	contextName := loginContext
	if contextName == "" {
		contextName = store.GetCurrentContextName()
	}
	if contextName == "" {
		contextName = "default"
	}

	ctx := &session.Context{
		ServerURL:    serverURL,
		Username:     username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}

	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to set current context: %w", err)
	}

	fmt.Printf("Logged in successfully as %s\n", username)
	fmt.Printf("Context: %s\n", contextName)
	fmt.Printf("Session saved to: %s\n", store.ConfigPath())

	return nil
}
