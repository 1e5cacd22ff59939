// Package cmdutil provides shared helpers for depotctl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marmos91/depot/internal/cli/output"
	"github.com/marmos91/depot/internal/cli/prompt"
	"github.com/marmos91/depot/internal/cli/session"
	"github.com/marmos91/depot/pkg/apiclient"
)

// Flags holds the global flag values synced from the root command.
var Flags = &GlobalFlags{}

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// GetAuthenticatedClient builds an API client from the current session.
// Explicit --server and --token flags take precedence over the stored
// context. An expired access token is refreshed transparently when a
// refresh token is available.
func GetAuthenticatedClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	store, err := session.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	ctx, err := store.GetCurrentContext()
	if err != nil {
		return nil, session.ErrNotLoggedIn
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return nil, fmt.Errorf("no server URL configured. Run 'depotctl login --server <url>' first")
	}

	tok := ctx.AccessToken
	if Flags.Token != "" {
		tok = Flags.Token
	}

	if ctx.IsExpired() && ctx.HasRefreshToken() {
		client := apiclient.New(url)
		tokens, err := client.RefreshToken(ctx.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("session expired. Run 'depotctl login' to re-authenticate")
		}
		if err := store.UpdateTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to save refreshed tokens: %w", err)
		}
		tok = tokens.AccessToken
	}

	if tok == "" {
		return nil, session.ErrNotLoggedIn
	}

	return apiclient.New(url).WithToken(tok), nil
}

// GetOutputFormatParsed parses the --output flag.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled reports whether --no-color was set.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput renders data in the requested format. For table format it
// prints emptyMsg when the result set is empty.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResource renders a single resource, using tableRenderer for the
// table format and direct marshaling otherwise.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message in table format. JSON and YAML
// output stays machine readable, so the message is suppressed there.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// RunDeleteWithConfirmation confirms a destructive operation, honoring
// --force, and runs deleteFn on approval.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s '%s' deleted", resourceType, name))
	return nil
}

// HandleAbort maps a Ctrl+C abort to a clean exit. Other errors pass
// through unchanged.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// ParseCommaSeparatedList splits a comma-separated flag value into
// trimmed, non-empty items.
func ParseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// EmptyOr returns value, or fallback when value is empty. Used for
// table cells where blanks read badly.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
