package main

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW        = 7 // width of each step column in the circuit strip
	labelVisualW = 7 // visual width of qubit label area
	menuW        = 46
)

// palette names the colours of the step viewer.
type palette struct {
	Editor lipgloss.Color
	Steps  lipgloss.Color
	Keys   lipgloss.Color
	Title  lipgloss.Color
	Active lipgloss.Color
	Index  lipgloss.Color
	Result lipgloss.Color
	Error  lipgloss.Color
	Muted  lipgloss.Color
	Text   lipgloss.Color
}

var colors = palette{
	Editor: lipgloss.Color("#bb9af7"),
	Steps:  lipgloss.Color("#7aa2f7"),
	Keys:   lipgloss.Color("#9ece6a"),
	Title:  lipgloss.Color("#ff9e64"),
	Active: lipgloss.Color("#e0af68"),
	Index:  lipgloss.Color("#7dcfff"),
	Result: lipgloss.Color("#73daca"),
	Error:  lipgloss.Color("#f7768e"),
	Muted:  lipgloss.Color("#565f89"),
	Text:   lipgloss.Color("#c0caf5"),
}

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	editorStyle     = panel(colors.Editor)
	stepsStyle      = panel(colors.Steps)
	controlsStyle   = panel(colors.Keys)
	menuBorderStyle = panel(colors.Title)

	titleStyle        = fg(colors.Title).Bold(true)
	activeStyle       = fg(colors.Active)
	stepIndexStyle    = fg(colors.Index)
	resultStyle       = fg(colors.Result).Bold(true)
	errorStyle        = fg(colors.Error).Bold(true)
	gateStyle         = fg(colors.Result).Bold(true)
	dimStyle          = fg(colors.Muted)
	menuSelectedStyle = fg(colors.Title).Bold(true)
	menuNormalStyle   = fg(colors.Text)
)
