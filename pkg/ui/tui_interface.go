package ui

// Stage is a step of an export run
type Stage string

const (
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageRender  Stage = "render"
	StageSave    Stage = "save"
)

// Progress receives run events. The console printer and the TUI both
// implement it.
type Progress interface {
	Stage(stage Stage, detail string)
	FetchPass(pass, requested, received int)
	LogInfo(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
}

// Outcome is what a finished run shows the user
type Outcome struct {
	Message     string
	Artifact    string
	SummaryPath string
	Preview     string
	Total       int
	InRange     int
}

// NopProgress discards all events
type NopProgress struct{}

func (NopProgress) Stage(Stage, string)               {}
func (NopProgress) FetchPass(int, int, int)           {}
func (NopProgress) LogInfo(string, ...interface{})    {}
func (NopProgress) LogWarning(string, ...interface{}) {}
