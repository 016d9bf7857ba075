package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk       = lipgloss.Color("#E5E9F0")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#88C0D0")
	ColorAccentAlt = lipgloss.Color("#81A1C1")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

// Shared styles, also used by the plain-text command output.
var (
	FileStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	KeyStyle    = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorInk)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorDim)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError)
	BulletStyle = DimStyle
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = ValueStyle
	accentStyle  = KeyStyle
	barStyle     = ValueStyle
	dimStyle     = DimStyle
	warnStyle    = WarnStyle
	errorStyle   = ErrorStyle
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	valueStyle   = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
