package core

// Mode selects how blocks are rendered in a session.
type Mode int

const (
	// ModeLive renders the visitor-facing page.
	ModeLive Mode = iota
	// ModeEditor renders blocks for the visual page builder.
	ModeEditor
)

// String returns the mode name as exposed to block scripts.
func (m Mode) String() string {
	if m == ModeEditor {
		return "editor"
	}
	return "live"
}

// ForPageBuilder reports whether output is destined for the editor surface.
func (m Mode) ForPageBuilder() bool {
	return m == ModeEditor
}
