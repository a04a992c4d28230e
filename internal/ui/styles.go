package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("4")   // Blue
	ColorSecondary = lipgloss.Color("8")   // Gray
	ColorSuccess   = lipgloss.Color("2")   // Green
	ColorWarning   = lipgloss.Color("3")   // Yellow
	ColorDanger    = lipgloss.Color("1")   // Red
	ColorMuted     = lipgloss.Color("245") // Light gray
	ColorHighlight = lipgloss.Color("6")   // Cyan
	ColorText      = lipgloss.Color("252") // Light text
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	CurrentBranchStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	ProtectedStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	IDBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ConfirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDanger).
			Padding(1, 2)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	InputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

// Symbols
const (
	SymbolCursor    = "›"
	SymbolCurrent   = "•"
	SymbolProtected = "⛨"
)
