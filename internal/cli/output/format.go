// Package output renders CLI command results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects how command output is rendered.
type Format string

const (
	// FormatTable renders output as an aligned text table.
	FormatTable Format = "table"
	// FormatJSON renders output as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders output as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a user-supplied string into a Format.
// An empty string defaults to table output.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes formatted command output to a single destination.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer writing to out in the given format.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{out: out, format: format, color: color}
}

// DefaultPrinter writes tables to stdout with color enabled.
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, FormatTable, true)
}

// Format returns the printer's configured format.
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the underlying output writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// ColorEnabled reports whether ANSI color output is on.
func (p *Printer) ColorEnabled() bool {
	return p.color
}

// Print renders data in the configured format. Table format requires
// data to implement TableRenderer; anything else falls back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, renderer)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Println writes a line of plain text.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Printf writes formatted plain text.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Success prints msg in green when color is enabled.
func (p *Printer) Success(msg string) {
	p.colored("\033[32m", msg)
}

// Error prints msg in red when color is enabled.
func (p *Printer) Error(msg string) {
	p.colored("\033[31m", msg)
}

// Warning prints msg in yellow when color is enabled.
func (p *Printer) Warning(msg string) {
	p.colored("\033[33m", msg)
}

func (p *Printer) colored(code, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "%s%s\033[0m\n", code, msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
