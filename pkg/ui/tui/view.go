package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"liexport/pkg/ui"
)

// View renders the run
func (m Model) View() string {
	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("liexport"),
		subtitleStyle.Render("LinkedIn post export"),
	)
	sections = append(sections, header, "")

	if m.profile != "" {
		sections = append(sections, labelStyle.Render("Profile")+valueStyle.Render(m.profile))
	}

	sections = append(sections, m.renderStages(), "")

	switch {
	case m.outcome != nil:
		sections = append(sections, m.renderOutcome())
	case m.err != nil:
		sections = append(sections, m.renderError())
	}

	if logs := m.renderLogs(); logs != "" {
		sections = append(sections, logs)
	}

	footer := fmt.Sprintf("elapsed %s", FormatDuration(m.Elapsed()))
	if !m.Finished() {
		footer += " • q to cancel"
	}
	sections = append(sections, helpStyle.Render(footer))

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(view) + "\n"
	}
	return view + "\n"
}

// renderStages renders the step list with a spinner on the active step
func (m Model) renderStages() string {
	var lines []string
	for _, item := range m.stages {
		var icon string
		switch item.State {
		case StageDone:
			icon = "✓"
		case StageActive:
			icon = m.spinner.View()
		case StageFailed:
			icon = "✗"
		default:
			icon = "·"
		}

		line := fmt.Sprintf("%s %s", icon, stageStyle(item.State).Render(item.Label))
		if item.Detail != "" && item.Stage != ui.StageResolve {
			line += "  " + detailStyle.Render(item.Detail)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderOutcome renders the summary panel
func (m Model) renderOutcome() string {
	o := m.outcome

	var rows []string
	rows = append(rows, successStyle.Render(o.Message))
	if o.Artifact != "" {
		rows = append(rows, labelStyle.Render("Saved")+valueStyle.Render(o.Artifact))
	}
	if o.SummaryPath != "" {
		rows = append(rows, labelStyle.Render("Summary")+valueStyle.Render(o.SummaryPath))
	}
	if len(m.passes) > 1 {
		rows = append(rows, detailStyle.Render(fmt.Sprintf("widened to %d posts on a second pass", m.passes[len(m.passes)-1].Requested)))
	}

	if o.InRange > 0 && o.Preview != "" {
		rows = append(rows, "", labelStyle.Render("Preview"))
		rows = append(rows, previewStyle.Render(truncateLines(o.Preview, m.previewLines)))
	}

	return panelStyle.Render(strings.Join(rows, "\n"))
}

// renderError renders the failure panel
func (m Model) renderError() string {
	return errorPanelStyle.Render(errorStyle.Render("Export failed") + "\n" + m.err.Error())
}

// renderLogs renders recent log lines
func (m Model) renderLogs() string {
	if len(m.logMessages) == 0 {
		return ""
	}
	var lines []string
	for _, msg := range m.logMessages {
		ts := logTimestampStyle.Render(msg.Time.Format("15:04:05"))
		text := lipgloss.NewStyle().Foreground(msg.Color).Render(msg.Message)
		lines = append(lines, ts+" "+text)
	}
	return strings.Join(lines, "\n")
}

// truncateLines keeps the first n lines of s
func truncateLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if n <= 0 || len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-n)
}
