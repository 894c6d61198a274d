package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"liexport/pkg/ui"
)

// TUI runs the bubbletea program for one export and implements ui.Progress
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI for profile. cancel is called if the user quits
// before the run finishes. Output goes to out, normally stderr.
func NewTUI(profile string, cancel func(), out io.Writer) *TUI {
	model := NewModel(profile)
	model.cancel = cancel

	opts := []tea.ProgramOption{}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	program := tea.NewProgram(&model, opts...)

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start runs the program until the run finishes or the user quits
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Stage implements ui.Progress
func (t *TUI) Stage(stage ui.Stage, detail string) {
	t.Send(StageMsg{Stage: stage, Detail: detail})
}

// FetchPass implements ui.Progress
func (t *TUI) FetchPass(pass, requested, received int) {
	t.Send(PassMsg{Pass: pass, Requested: requested, Received: received})
}

// LogInfo implements ui.Progress
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Send(LogMsg{Level: "INFO", Message: fmt.Sprintf(format, args...)})
}

// LogWarning implements ui.Progress
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Send(LogMsg{Level: "WARN", Message: fmt.Sprintf(format, args...)})
}

// Done shows the outcome and ends the program
func (t *TUI) Done(o ui.Outcome) {
	t.Send(DoneMsg{Outcome: o})
}

// Fail shows err and ends the program
func (t *TUI) Fail(err error) {
	t.Send(FailMsg{Err: err})
}
