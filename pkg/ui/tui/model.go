package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"liexport/pkg/ui"
)

// StageState is the state of one pipeline step
type StageState int

const (
	StagePending StageState = iota
	StageActive
	StageDone
	StageFailed
)

// StageItem is one row of the step list
type StageItem struct {
	Stage  ui.Stage
	Label  string
	Detail string
	State  StageState
}

// Pass records one actor call
type Pass struct {
	Number    int
	Requested int
	Received  int
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model for an export run
type Model struct {
	spinner spinner.Model

	profile string
	stages  []*StageItem
	passes  []Pass

	outcome *ui.Outcome
	err     error

	startTime  time.Time
	finishTime time.Time

	width          int
	height         int
	logMessages    []LogMessage
	maxLogMessages int
	previewLines   int

	// Called when the user quits before the run finishes
	cancel func()
}

// NewModel creates a model for the given profile
func NewModel(profile string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentCyan)

	stages := []*StageItem{
		{Stage: ui.StageResolve, Label: "Profile"},
		{Stage: ui.StageFetch, Label: "Fetch"},
		{Stage: ui.StageRender, Label: "Render"},
		{Stage: ui.StageSave, Label: "Save"},
	}

	return Model{
		spinner:        s,
		profile:        profile,
		stages:         stages,
		startTime:      time.Now(),
		maxLogMessages: 8,
		previewLines:   20,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// SetStage marks stage active and every earlier stage done
func (m *Model) SetStage(stage ui.Stage, detail string) {
	reached := false
	for _, item := range m.stages {
		switch {
		case item.Stage == stage:
			item.State = StageActive
			if detail != "" {
				item.Detail = detail
			}
			reached = true
		case !reached:
			item.State = StageDone
		}
	}
	if stage == ui.StageResolve && detail != "" {
		m.profile = detail
	}
}

// AddPass records an actor call
func (m *Model) AddPass(number, requested, received int) {
	m.passes = append(m.passes, Pass{Number: number, Requested: requested, Received: received})
	for _, item := range m.stages {
		if item.Stage == ui.StageFetch {
			item.Detail = fmt.Sprintf("pass %d: %d received of %d requested", number, received, requested)
		}
	}
}

// Finish marks every stage done and keeps the outcome for display
func (m *Model) Finish(o ui.Outcome) {
	for _, item := range m.stages {
		item.State = StageDone
	}
	m.outcome = &o
	m.finishTime = time.Now()
}

// Fail marks the active stage failed
func (m *Model) Fail(err error) {
	for _, item := range m.stages {
		if item.State == StageActive {
			item.State = StageFailed
		}
	}
	m.err = err
	m.finishTime = time.Now()
}

// Finished reports whether the run has ended either way
func (m *Model) Finished() bool {
	return m.outcome != nil || m.err != nil
}

// Err returns the failure the run ended with, if any
func (m *Model) Err() error {
	return m.err
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = alertRed
	case "WARN":
		color = accentOrange
	case "SUCCESS":
		color = accentGreen
	case "INFO":
		color = accentCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Elapsed returns the run time so far, or the total once finished
func (m *Model) Elapsed() time.Duration {
	if !m.finishTime.IsZero() {
		return m.finishTime.Sub(m.startTime)
	}
	return time.Since(m.startTime)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
