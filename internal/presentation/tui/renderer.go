package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Presenter writes results to a terminal. On a TTY output is rendered as
// markdown and errors are coloured; otherwise both are plain lines.
type Presenter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	styled bool
	render func(string) (string, error)
}

var _ ports.Presenter = (*Presenter)(nil)

type Option func(*Presenter)

// WithErrorWriter sends ShowError to w instead of the output writer.
func WithErrorWriter(w io.Writer) Option {
	return func(p *Presenter) {
		p.errOut = w
	}
}

// WithStyled forces styled or plain output regardless of TTY detection.
func WithStyled(styled bool) Option {
	return func(p *Presenter) {
		p.styled = styled
	}
}

func NewPresenter(out io.Writer, opts ...Option) *Presenter {
	p := &Presenter{
		out:    out,
		errOut: out,
		styled: IsTerminal(out),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.styled {
		p.render = NewRenderer()
	}
	return p
}

func (p *Presenter) ShowOutput(ctx context.Context, out domain.Output) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.styled {
		_, err := fmt.Fprintln(p.out, strings.TrimRight(out.Text, "\n"))
		return err
	}

	md := fmt.Sprintf("**%s**\n\n```\n%s\n```\n", out.Source, strings.TrimRight(out.Text, "\n"))
	rendered, err := p.render(md)
	if err != nil {
		rendered = out.Text + "\n"
	}
	_, err = io.WriteString(p.out, rendered)
	return err
}

func (p *Presenter) ShowError(ctx context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.styled {
		_, err := fmt.Fprintf(p.errOut, "error: %s\n", message)
		return err
	}

	o := termenv.NewOutput(p.errOut)
	_, err := fmt.Fprintln(p.errOut, o.String("✗ "+message).Foreground(o.Color("#f87171")).Bold())
	return err
}
