package context

import (
	"fmt"
	"os"

	"github.com/marmos91/depot/cmd/depotctl/cmdutil"
	"github.com/marmos91/depot/internal/cli/session"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured contexts",
	Long: `List all configured server contexts.

Shows the context name, server URL, and username for each saved
context. The current context is marked with an asterisk (*).`,
	RunE: runContextList,
}

// ContextInfo represents context information for output.
type ContextInfo struct {
	Name      string `json:"name" yaml:"name"`
	Current   bool   `json:"current" yaml:"current"`
	ServerURL string `json:"server_url" yaml:"server_url"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	LoggedIn  bool   `json:"logged_in" yaml:"logged_in"`
}

// ContextList renders contexts as a table.
type ContextList []ContextInfo

func (cl ContextList) Headers() []string {
	return []string{"", "NAME", "SERVER", "USER", "LOGGED IN"}
}

func (cl ContextList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		current := ""
		if c.Current {
			current = "*"
		}
		loggedIn := "no"
		if c.LoggedIn {
			loggedIn = "yes"
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL, c.Username, loggedIn})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	currentContext := store.GetCurrentContextName()

	names := store.ListContexts()
	contexts := make(ContextList, 0, len(names))
	for _, name := range names {
		ctx, err := store.GetContext(name)
		if err != nil {
			continue
		}
		contexts = append(contexts, ContextInfo{
			Name:      name,
			Current:   name == currentContext,
			ServerURL: ctx.ServerURL,
			Username:  ctx.Username,
			LoggedIn:  ctx.AccessToken != "" && !ctx.IsExpired(),
		})
	}

	return cmdutil.PrintOutput(os.Stdout, contexts, len(contexts) == 0,
		"No contexts configured. Use 'depotctl login --server <url>' to create one.", contexts)
}
