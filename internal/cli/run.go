package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/inicheck"
	"github.com/aretw0/inicheck/internal/presentation/tui"
	"github.com/aretw0/inicheck/pkg/adapters/file"
	"github.com/aretw0/inicheck/pkg/schema"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by RunCheck when at least one item failed.
var ErrInvalid = errors.New("configuration is invalid")

// RunCheck validates the configuration once and prints the report. With
// WritePath set the normalized configuration is written there, invalid
// items keeping their raw values.
func RunCheck(ctx context.Context, opts Options) error {
	logger, err := NewLogger(opts)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, opts, logger, inicheck.WithWriteBack(opts.WritePath != ""))
	if err != nil {
		return err
	}
	defer func() { _ = ws.close() }()

	report, err := ws.sess.Check(ctx)
	if err != nil {
		return err
	}

	if opts.WritePath != "" {
		if err := file.Save(ctx, ws.store, opts.WritePath); err != nil {
			return err
		}
		logger.Info("normalized configuration written", "path", opts.WritePath)
	}

	if err := printReport(opts.stdout(), report, opts.Output); err != nil {
		return err
	}
	if !report.Valid() {
		return ErrInvalid
	}
	return nil
}

func printReport(w io.Writer, report *inicheck.Report, output string) error {
	sum := report.Summary()
	switch defaultString(output, OutputText) {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case OutputYAML:
		return yaml.NewEncoder(w).Encode(sum)
	case OutputText:
		p := tui.NewPrinter(w)
		if err := p.Markdown(tui.ReportMarkdown(sum)); err != nil {
			return err
		}
		p.Status(sum.Valid, len(report.Failed()))
		return nil
	}
	return fmt.Errorf("unknown output format %q", output)
}

// RunCast prints the typed configuration. Items that fail to cast are left
// out and reported in the returned error.
func RunCast(ctx context.Context, opts Options) error {
	logger, err := NewLogger(opts)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ws.close() }()

	sections, castErr := ws.sess.Cast(ctx)
	if sections == nil && castErr != nil {
		return castErr
	}

	format := file.FormatYAML
	switch defaultString(opts.Output, OutputYAML) {
	case OutputYAML:
	case OutputJSON:
		format = file.FormatJSON
	default:
		return fmt.Errorf("unknown output format %q", opts.Output)
	}

	data, err := file.Encode(sections, format)
	if err != nil {
		return err
	}
	if _, err := opts.stdout().Write(data); err != nil {
		return err
	}
	return castErr
}

// RunSchema prints the schema: a markdown table for text output, or the
// schema document itself as YAML or JSON.
func RunSchema(opts Options) error {
	master, err := schema.Load(opts.SchemaPath)
	if err != nil {
		return err
	}

	w := opts.stdout()
	switch defaultString(opts.Output, OutputText) {
	case OutputText:
		return tui.NewPrinter(w).Markdown(tui.SchemaMarkdown(master))
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(master); err != nil {
			return err
		}
		return enc.Close()
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(master)
	}
	return fmt.Errorf("unknown output format %q", opts.Output)
}
