package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMarkdown(t *testing.T) {
	md := ReportMarkdown(inicheck.Summary{
		Valid: false,
		Items: []inicheck.ItemSummary{
			{Section: "basic", Item: "tags", Type: "string", Valid: true, Value: []any{"a", "b"}},
			{Section: "time", Item: "start_date", Type: "datetime", Valid: true, Value: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Section: "basic", Item: "pipe", Type: "string", Valid: false, Messages: []string{"a|b", "second"}},
		},
	})

	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "# Configuration check", lines[0])
	assert.Equal(t, "| basic | tags | string | ok | a, b |", lines[4])
	assert.Equal(t, "| time | start_date | datetime | ok | 2020-01-01T00:00:00Z |", lines[5])
	assert.Equal(t, `| basic | pipe | string | **FAIL** | a\|b; second |`, lines[6])
}

func TestReportMarkdown_Empty(t *testing.T) {
	md := ReportMarkdown(inicheck.Summary{Valid: true})
	assert.Contains(t, md, "No items to check")
}

func TestSchemaMarkdown(t *testing.T) {
	lo, hi := 0.0, 1.0
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "fraction", Type: schema.TypeFloat, Min: &lo, Max: &hi, Default: 0.5},
		schema.Entry{Section: "basic", Item: "tags", Type: schema.TypeString, List: true, Options: []any{"a", "b"}},
		schema.Entry{Section: "paths", Item: "log_dir", Type: schema.TypeDirectory, Description: "Where logs go"},
	)

	md := SchemaMarkdown(master)
	assert.Contains(t, md, "## basic")
	assert.Contains(t, md, "## paths")
	assert.Contains(t, md, "| fraction | float | 0.5 | 0 to 1 |  |  |")
	assert.Contains(t, md, "| tags | [string] |  |  | a, b |  |")
	assert.Contains(t, md, "| log_dir | directory |  |  |  | Where logs go |")
	assert.Less(t, strings.Index(md, "## basic"), strings.Index(md, "## paths"))
}

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	require.NoError(t, p.Markdown("# Title\n"))
	assert.Equal(t, "# Title\n", buf.String(), "non-terminals get raw markdown")

	buf.Reset()
	p.Status(false, 1)
	assert.Equal(t, "✘ 1 item failed validation\n", buf.String())

	buf.Reset()
	p.Status(true, 0)
	assert.Equal(t, "✔ configuration is valid\n", buf.String())
}

func TestTerminalDetection(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))

	t.Setenv("COLUMNS", "120")
	assert.Equal(t, 120, TerminalWidth(&buf))

	t.Setenv("COLUMNS", "")
	assert.Equal(t, 0, TerminalWidth(&buf))
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(40)
	require.NoError(t, err)
	out, err := render("# Title\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}
