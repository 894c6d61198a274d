package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"liexport/pkg/errors"
	"liexport/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	verbose       bool
	noLogo        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "liexport [profile-url]",
	Short: "Export LinkedIn posts in a date range to CSV or JSON",
	Long: `liexport exports the posts of a LinkedIn profile through the Apify
apimaestro/linkedin-profile-posts actor.

It requests a bounded number of posts, widens the request once when the
first batch does not reach back to the start date, keeps the posts whose
date falls inside the range and writes them as CSV or JSON.

A bare 'liexport <profile-url>' is the same as 'liexport export <profile-url>'.`,
	Example: `  # Posts from the start of 2025 until today
  liexport https://www.linkedin.com/in/janedoe/

  # A single month, as JSON on stdout
  liexport export janedoe --from 2025-03-01 --to 2025-03-31 --format json --stdout`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose && !cmd.Flags().Changed("log-level") {
			logLevel = "debug"
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runExport(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		renderError(err)
		os.Exit(1)
	}
}

// renderError prints err according to its kind
func renderError(err error) {
	switch errors.KindOf(err) {
	case errors.KindInput:
		ui.PrintError("Invalid input", err.Error())
		fmt.Fprintln(ui.Out, ui.Dim("Run 'liexport export --help' for usage."))
	case errors.KindUpstream:
		if code := errors.StatusCode(err); code > 0 {
			ui.PrintError(fmt.Sprintf("Apify returned status %d", code), err.Error())
		} else {
			ui.PrintError("Apify request failed", err.Error())
		}
	default:
		ui.PrintError("Error", err.Error())
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./liexport.yaml or ~/.config/liexport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "do not print the logo")

	// Version template
	rootCmd.SetVersionTemplate(`liexport {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
