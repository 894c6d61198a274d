package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"liexport/pkg/ui"
)

// Message types for the TUI

// StageMsg is sent when the pipeline enters a step
type StageMsg struct {
	Stage  ui.Stage
	Detail string
}

// PassMsg is sent after each actor call
type PassMsg struct {
	Pass      int
	Requested int
	Received  int
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg is sent when the run succeeded
type DoneMsg struct {
	Outcome ui.Outcome
}

// FailMsg is sent when the run failed
type FailMsg struct {
	Err error
}

// TickMsg is sent periodically to refresh the elapsed time
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.Finished() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.Finished() {
			return m, nil
		}
		return m, tickCmd()

	case StageMsg:
		m.SetStage(msg.Stage, msg.Detail)
		return m, nil

	case PassMsg:
		m.AddPass(msg.Pass, msg.Requested, msg.Received)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.Finish(msg.Outcome)
		return m, tea.Quit

	case FailMsg:
		m.Fail(msg.Err)
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c", "esc":
		if !m.Finished() && m.cancel != nil {
			m.cancel()
			m.AddLogMessage("WARN", "Cancelled by user")
		}
		return m, tea.Quit

	case "ctrl+l":
		m.logMessages = []LogMessage{}
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
