package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"liexport/pkg/auth"
	"liexport/pkg/config"
	"liexport/pkg/errors"
	"liexport/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage liexport configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (LIEXPORT_*, APIFY_TOKEN)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'liexport.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The Apify token is masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value ranges for per_page and target_total
  - Timezone name
  - Output and log directory accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# liexport configuration file
#
# Environment variables prefixed with LIEXPORT_ override these values,
# e.g. LIEXPORT_TIMEZONE or LIEXPORT_OUTPUT_DIR. APIFY_TOKEN is honored too.

# Apify actor access
apify:
  # API token (prefer 'liexport auth login' or APIFY_TOKEN over storing it here)
  token: ""

  # Synchronous dataset endpoint of the actor
  endpoint: "` + config.DefaultEndpoint + `"

  # Upper bound for one actor run
  timeout: 300s

# Fetch sizing
fetch:
  # Posts per actor page
  # Range: 1-100
  per_page: 100

  # Posts requested on the first pass
  # Range: 1-20000
  target_total: 100

  # When the first batch looks capped and does not reach the start date a
  # second, wider pass asks for max(retry_floor, target_total * retry_multiplier)
  retry_floor: 10000
  retry_multiplier: 2

  # A batch counts as capped once it has min(target_total, ceiling_threshold) posts
  ceiling_threshold: 1000

  # Timezone for day boundaries and timestamps without an offset
  timezone: "UTC"

# Export artifact
output:
  # Directory for linkedin_posts_<from>_to_<to>.<ext>
  directory: "."

  # csv or json
  format: "csv"

  # Replace an existing export with the same name
  overwrite_existing: false

  # Write <export>.summary.yaml next to the export
  save_summary: false

  # yaml or json
  summary_format: "yaml"

  # Records shown in the console preview
  preview_count: 3

# Desktop notifications
notifications:
  enabled: false
  on_complete: true
  on_error: true

# Logging
logging:
  # debug, info, warn, error
  level: "warn"

  # Optional log file in addition to stderr
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "liexport.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return errors.Input("config init", "configuration file already exists: %s (remove it first)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return errors.Internal("create configuration file", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Out, "\nNext steps:")
	fmt.Fprintln(ui.Out, "1. Store your Apify token with 'liexport auth login'")
	fmt.Fprintln(ui.Out, "2. Run 'liexport config validate' to check the configuration")
	fmt.Fprintln(ui.Out, "3. Export with 'liexport export <profile-url>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return errors.Input("load configuration", "%v", err)
	}

	displayCfg := *cfg
	if displayCfg.Apify.Token != "" {
		displayCfg.Apify.Token = auth.MaskToken(displayCfg.Apify.Token)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return errors.Internal("format configuration", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, string(data))

	fmt.Fprintln(ui.Out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Out, "1. Command line flags")
	fmt.Fprintln(ui.Out, "2. Environment variables (LIEXPORT_*, APIFY_TOKEN)")
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path != "" {
		fmt.Fprintf(ui.Out, "3. Configuration file: %s\n", path)
	} else {
		fmt.Fprintln(ui.Out, "3. Configuration file: (none found)")
	}
	fmt.Fprintln(ui.Out, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return errors.Input("config validate", "no configuration file found; specify one with --config")
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		return errors.Input("config validate", "%v", err)
	}

	var problems []string
	var warnings []string

	if cfg.Apify.Token == "" {
		warnings = append(warnings, "apify token not configured here; 'liexport auth login' or APIFY_TOKEN must provide it")
	}
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(ui.Out, "  - %s\n", p)
		}
		return errors.Input("config validate", "%d problem(s) found", len(problems))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(ui.Out, "  - %s\n", w)
		}
		fmt.Fprintln(ui.Out)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(ui.Out, "\nConfiguration summary:")
	fmt.Fprintf(ui.Out, "  Output directory: %s\n", cfg.Output.Directory)
	fmt.Fprintf(ui.Out, "  Format: %s\n", cfg.Output.Format)
	fmt.Fprintf(ui.Out, "  Per page: %d\n", cfg.Fetch.PerPage)
	fmt.Fprintf(ui.Out, "  Target total: %d\n", cfg.Fetch.TargetTotal)
	fmt.Fprintf(ui.Out, "  Timezone: %s\n", cfg.Fetch.Timezone)
	fmt.Fprintf(ui.Out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
