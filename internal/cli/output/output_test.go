package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinterColorToggle(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable, true)
	printer.Success("done")
	assert.Contains(t, buf.String(), "\033[32m")

	buf.Reset()
	printer = NewPrinter(&buf, FormatTable, false)
	printer.Success("done")
	assert.Equal(t, "done\n", buf.String())

	buf.Reset()
	printer.Error("broken")
	assert.Contains(t, buf.String(), "broken")

	buf.Reset()
	printer.Warning("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatJSON, false)

	require.NoError(t, printer.Print(map[string]string{"name": "alice"}))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "alice", decoded["name"])
}

func TestPrinterYAML(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatYAML, false)

	require.NoError(t, printer.Print(map[string]string{"name": "alice"}))
	assert.Contains(t, buf.String(), "name: alice")
}

func TestPrinterTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable, false)

	// Plain maps do not implement TableRenderer.
	require.NoError(t, printer.Print(map[string]int{"count": 3}))
	assert.Contains(t, buf.String(), "\"count\": 3")
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	data := NewTableData("USERNAME", "EMAIL")
	data.AddRow("alice", "alice@example.com")
	data.AddRow("bob", "")

	require.NoError(t, PrintTable(&buf, data))

	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "bob")
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	pairs := [][2]string{
		{"Username", "alice"},
		{"Groups", "admins, readers"},
	}

	require.NoError(t, SimpleTable(&buf, pairs))

	out := buf.String()
	assert.Contains(t, out, "Username")
	assert.Contains(t, out, "admins, readers")
}
