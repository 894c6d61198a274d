package ui

import (
	"fmt"
	"io"
	"os"
)

// Out receives all console output. The CLI points it at stderr when the
// export itself goes to stdout.
var Out io.Writer = os.Stdout

// ASCII logo for the application
const ASCIILogo = `
  ╔═══════════════════════════════════════════════╗
  ║  _ _                       _                  ║
  ║ | (_) ___ __  ___ __  ___ | |_                ║
  ║ | | |/ -_)\ \/ / '_ \/ _ \|  _|               ║
  ║ |_|_|\___|/_/\_\ .__/\___/ \__|               ║
  ║                |_|  LinkedIn post exporter    ║
  ╚═══════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Fprint(Out, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Out, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Out, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Out, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Out, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Out, Magenta(msg))
}

// PrintOutcome prints the summary line, artifact location and preview
func PrintOutcome(o Outcome) {
	fmt.Fprintln(Out)
	PrintSuccess(o.Message)
	if o.Artifact != "" {
		PrintInfo("Saved", o.Artifact)
	}
	if o.SummaryPath != "" {
		PrintInfo("Summary", o.SummaryPath)
	}
	if o.InRange > 0 && o.Preview != "" {
		fmt.Fprintln(Out, Dim("Preview:"))
		fmt.Fprintln(Out, o.Preview)
	}
}
