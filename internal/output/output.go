package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// Printer writes styled terminal output, degrading to plain text when the
// destination is not a TTY so piped output stays clean.
type Printer struct {
	w        io.Writer
	tty      bool
	renderer *glamour.TermRenderer
}

// New returns a printer for w. Styling and markdown rendering activate only
// when w is a terminal.
func New(w io.Writer) *Printer {
	p := &Printer{w: w}
	if f, ok := w.(*os.File); ok {
		p.tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if p.tty {
		p.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	}
	return p
}

// Stdout returns a printer for standard output.
func Stdout() *Printer { return New(os.Stdout) }

// Stderr returns a printer for standard error.
func Stderr() *Printer { return New(os.Stderr) }

func (p *Printer) styled(s lipgloss.Style, text string) string {
	if !p.tty {
		return text
	}
	return s.Render(text)
}

// Header prints a bold section header.
func (p *Printer) Header(format string, args ...any) {
	fmt.Fprintln(p.w, p.styled(headerStyle, fmt.Sprintf(format, args...)))
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.styled(successStyle, fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.styled(warnStyle, "warning: "+fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.styled(errorStyle, "error: "+fmt.Sprintf(format, args...)))
}

// Dim prints de-emphasized detail text.
func (p *Printer) Dim(format string, args ...any) {
	fmt.Fprintln(p.w, p.styled(dimStyle, fmt.Sprintf(format, args...)))
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Box prints text inside a rounded border, used for commit message previews.
// Without a TTY it falls back to an indented block.
func (p *Printer) Box(text string) {
	text = strings.TrimRight(text, "\n")
	if !p.tty {
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintln(p.w, "    "+line)
		}
		return
	}
	fmt.Fprintln(p.w, boxStyle.Render(text))
}

// Markdown renders markdown for the terminal; piped output gets the raw
// source so it stays machine-readable.
func (p *Printer) Markdown(src string) {
	if p.renderer != nil {
		if out, err := p.renderer.Render(src); err == nil {
			fmt.Fprint(p.w, out)
			return
		}
	}
	fmt.Fprintln(p.w, strings.TrimRight(src, "\n"))
}
