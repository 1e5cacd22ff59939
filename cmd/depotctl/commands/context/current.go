package context

import (
	"fmt"
	"os"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/output"
	"github.com/marmos91/depot/internal/cli/session"
	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current context",
	RunE:  runContextCurrent,
}

func runContextCurrent(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		return fmt.Errorf("no current context set\n\n" +
			"Login to a server first:\n" +
			"  depotctl login --server http://localhost:8080")
	}

	ctx, err := store.GetContext(contextName)
	if err != nil {
		return fmt.Errorf("failed to get context: %w", err)
	}

	info := ContextInfo{
		Name:      contextName,
		Current:   true,
		ServerURL: ctx.ServerURL,
		Username:  ctx.Username,
		LoggedIn:  ctx.AccessToken != "" && !ctx.IsExpired(),
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, info)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, info)
	default:
		status := "Not logged in"
		if info.LoggedIn {
			status = "Logged in"
		}
		fmt.Printf("Current context: %s\n", contextName)
		fmt.Printf("  Server:  %s\n", ctx.ServerURL)
		fmt.Printf("  User:    %s\n", ctx.Username)
		fmt.Printf("  Status:  %s\n", status)
	}

	return nil
}
