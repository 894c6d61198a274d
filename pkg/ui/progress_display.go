package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var stageLabels = map[Stage]string{
	StageResolve: "Profile",
	StageFetch:   "Fetching",
	StageRender:  "Rendering",
	StageSave:    "Saving",
}

// ProgressDisplay prints run events as plain console lines
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	startTime time.Time
	isDebug   bool
}

// NewProgressDisplay creates a display writing to out. A nil out means Out.
func NewProgressDisplay(out io.Writer, debug bool) *ProgressDisplay {
	if out == nil {
		out = Out
	}
	return &ProgressDisplay{
		out:       out,
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// Stage prints the start of a pipeline step
func (p *ProgressDisplay) Stage(stage Stage, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label, ok := stageLabels[stage]
	if !ok {
		label = string(stage)
	}
	switch {
	case stage == StageResolve:
		fmt.Fprintf(p.out, "%s %s\n", Cyan(label+":"), Yellow(detail))
	case detail != "" && p.isDebug:
		fmt.Fprintf(p.out, "%s %s %s\n", Magenta("→"), label, Dim(detail))
	default:
		fmt.Fprintf(p.out, "%s %s\n", Magenta("→"), label)
	}
}

// FetchPass prints one actor call
func (p *ProgressDisplay) FetchPass(pass, requested, received int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "  %s pass %d: requested up to %d, received %d %s\n",
		Green("✓"), pass, requested, received, Dim(p.formatDuration(time.Since(p.startTime))))
	if pass == 1 && received > 0 && p.isDebug {
		fmt.Fprintf(p.out, "  %s\n", Dim("checking whether the batch reaches the start date"))
	}
}

// LogInfo prints an informational line
func (p *ProgressDisplay) LogInfo(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", Cyan("•"), fmt.Sprintf(format, args...))
}

// LogWarning prints a warning line
func (p *ProgressDisplay) LogWarning(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", Yellow("⚠"), fmt.Sprintf(format, args...))
}

// formatDuration formats a duration in a human-readable way
func (p *ProgressDisplay) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
