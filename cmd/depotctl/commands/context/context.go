// Package context implements context management subcommands for depotctl.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Manage server contexts",
	Long: `Manage connection contexts for multiple depot servers.

Contexts let you save and switch between server configurations, similar
to kubectl contexts.

Subcommands:
  list     List all configured contexts
  use      Switch to a different context
  current  Show the current context
  delete   Delete a context`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(deleteCmd)
}
