package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/pkg/schema"
)

// ReportMarkdown renders a pass summary as a markdown table.
func ReportMarkdown(sum inicheck.Summary) string {
	var sb strings.Builder
	sb.WriteString("# Configuration check\n\n")
	if len(sum.Items) == 0 {
		sb.WriteString("_No items to check._\n")
		return sb.String()
	}

	sb.WriteString("| Section | Item | Type | Status | Details |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, it := range sum.Items {
		status, details := "ok", formatValue(it.Value)
		if !it.Valid {
			status, details = "**FAIL**", strings.Join(it.Messages, "; ")
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			cell(it.Section), cell(it.Item), cell(it.Type), status, cell(details))
	}
	return sb.String()
}

// SchemaMarkdown renders the schema as one table per section.
func SchemaMarkdown(master *schema.Master) string {
	var sb strings.Builder
	sb.WriteString("# Schema\n")

	for _, section := range master.Sections() {
		fmt.Fprintf(&sb, "\n## %s\n\n", section)
		sb.WriteString("| Item | Type | Default | Bounds | Options | Description |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, item := range master.Items(section) {
			e, err := master.Lookup(section, item)
			if err != nil {
				continue
			}
			typ := e.Type.Name()
			if e.List {
				typ = "[" + typ + "]"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				cell(e.Item), cell(typ), cell(formatValue(e.Default)), bounds(e),
				cell(formatValue(e.Options)), cell(e.Description))
		}
	}
	return sb.String()
}

func bounds(e schema.Entry) string {
	switch {
	case e.Min != nil && e.Max != nil:
		return fmt.Sprintf("%v to %v", *e.Min, *e.Max)
	case e.Min != nil:
		return fmt.Sprintf(">= %v", *e.Min)
	case e.Max != nil:
		return fmt.Sprintf("<= %v", *e.Max)
	}
	return ""
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
