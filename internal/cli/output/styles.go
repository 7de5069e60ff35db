package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the terminal styles for status messages.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles creates styles bound to w. Off a terminal every style renders
// plain text.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	opts := []termenv.OutputOption{termenv.WithTTY(isTTY)}
	if !isTTY {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	r := lipgloss.NewRenderer(w, opts...)
	return &Styles{
		Success: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
