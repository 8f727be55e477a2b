// Package console writes styled, user-facing run output.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

type Style int

const (
	Default Style = iota
	Highlight
	Success
	Warning
	Error
)

func (s Style) String() string {
	switch s {
	case Highlight:
		return "highlight"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "default"
	}
}

// Console renders messages for one writer. Colors are dropped automatically
// when the writer is not a terminal.
type Console struct {
	out    io.Writer
	styles map[Style]lipgloss.Style
}

func New(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out: out,
		styles: map[Style]lipgloss.Style{
			Default:   r.NewStyle(),
			Highlight: r.NewStyle().Foreground(lipgloss.Color("#F8FAFC")).Bold(true),
			Success:   r.NewStyle().Foreground(lipgloss.Color("#10B981")),
			Warning:   r.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
			Error:     r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		},
	}
}

func (c *Console) Println(style Style, msg string) {
	fmt.Fprintln(c.out, c.render(style, msg))
}

func (c *Console) Printf(style Style, format string, args ...any) {
	c.Println(style, fmt.Sprintf(format, args...))
}

// Print writes msg without a trailing newline.
func (c *Console) Print(style Style, msg string) {
	fmt.Fprint(c.out, c.render(style, msg))
}

func (c *Console) render(style Style, msg string) string {
	if msg == "" {
		return msg
	}
	s, ok := c.styles[style]
	if !ok {
		return msg
	}
	return s.Render(msg)
}
