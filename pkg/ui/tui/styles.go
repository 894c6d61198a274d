package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accentCyan   = lipgloss.Color("#00B4D8")
	accentBlue   = lipgloss.Color("#0A66C2")
	accentGreen  = lipgloss.Color("#39D353")
	accentYellow = lipgloss.Color("#F5C518")
	accentOrange = lipgloss.Color("#FF8C00")
	alertRed     = lipgloss.Color("#FF4D4D")
	dimWhite     = lipgloss.Color("#B0B0B0")
	faintGray    = lipgloss.Color("#626262")
	brightWhite  = lipgloss.Color("#FFFFFF")

	titleStyle = lipgloss.NewStyle().
			Background(accentBlue).
			Foreground(brightWhite).
			Bold(true).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			PaddingLeft(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentBlue).
			Padding(0, 1)

	errorPanelStyle = panelStyle.
			BorderForeground(alertRed)

	labelStyle = lipgloss.NewStyle().
			Foreground(accentCyan).
			Bold(true).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(accentYellow)

	stageDoneStyle = lipgloss.NewStyle().
			Foreground(accentGreen)

	stageActiveStyle = lipgloss.NewStyle().
				Foreground(brightWhite).
				Bold(true)

	stagePendingStyle = lipgloss.NewStyle().
				Foreground(faintGray)

	stageFailedStyle = lipgloss.NewStyle().
				Foreground(alertRed).
				Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Faint(true)

	successStyle = lipgloss.NewStyle().
			Foreground(accentGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertRed).
			Bold(true)

	previewStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(faintGray).
			PaddingLeft(1)
)

// stageStyle returns the style for a step in the given state
func stageStyle(state StageState) lipgloss.Style {
	switch state {
	case StageDone:
		return stageDoneStyle
	case StageActive:
		return stageActiveStyle
	case StageFailed:
		return stageFailedStyle
	default:
		return stagePendingStyle
	}
}
