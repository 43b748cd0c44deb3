package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour,
// wrapping at width columns when width is positive.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// Printer writes reports to a terminal, styled when it is interactive and
// as plain markdown otherwise.
type Printer struct {
	w      io.Writer
	out    *termenv.Output
	render func(string) (string, error)
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w, out: termenv.NewOutput(w)}
	if IsTerminal(w) {
		if render, err := NewRenderer(TerminalWidth(w)); err == nil {
			p.render = render
		}
	}
	return p
}

// Markdown writes md, rendered through glamour on a terminal.
func (p *Printer) Markdown(md string) error {
	if p.render != nil {
		rendered, err := p.render(md)
		if err == nil {
			md = rendered
		}
	}
	_, err := io.WriteString(p.w, md)
	return err
}

// Status writes a one-line verdict.
func (p *Printer) Status(valid bool, failed int) {
	if valid {
		fmt.Fprintln(p.w, p.out.String("✔ configuration is valid").Foreground(p.out.Color("#22c55e")).Bold())
		return
	}
	noun := "items"
	if failed == 1 {
		noun = "item"
	}
	msg := fmt.Sprintf("✘ %d %s failed validation", failed, noun)
	fmt.Fprintln(p.w, p.out.String(msg).Foreground(p.out.Color("#ef4444")).Bold())
}
