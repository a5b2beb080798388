// internal/tui/styles.go
//
// lipgloss styles for the terminal UI.

package tui

import "charm.land/lipgloss/v2"

var (
	primary = lipgloss.Color("#8B5CF6")
	success = lipgloss.Color("#22C55E")
	failure = lipgloss.Color("#F43F5E")
	text    = lipgloss.Color("#F8FAFC")
	dim     = lipgloss.Color("#64748B")
	accent  = lipgloss.Color("#F97316")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)
	defStyle   = lipgloss.NewStyle().Foreground(text).Italic(true)
	slotStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	keyOn      = lipgloss.NewStyle().Bold(true).Foreground(text)
	keyOff     = lipgloss.NewStyle().Foreground(dim).Strikethrough(true)
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(success)
	badStyle   = lipgloss.NewStyle().Bold(true).Foreground(failure)
	hintStyle  = lipgloss.NewStyle().Foreground(dim)
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2)
)
