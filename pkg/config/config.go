package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the Apify actor that scrapes LinkedIn profile posts
const DefaultEndpoint = "https://api.apify.com/v2/acts/apimaestro~linkedin-profile-posts/run-sync-get-dataset-items"

// Config holds all configuration options for the exporter
type Config struct {
	// Apify actor access
	Apify ApifyConfig `yaml:"apify" json:"apify"`

	// Fetch sizing and the widening heuristic
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ApifyConfig holds actor endpoint and credential configuration
type ApifyConfig struct {
	Token    string        `yaml:"token" json:"token"`
	Endpoint string        `yaml:"endpoint" json:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// FetchConfig controls how many posts are requested from the actor
type FetchConfig struct {
	PerPage     int `yaml:"per_page" json:"per_page"`
	TargetTotal int `yaml:"target_total" json:"target_total"`

	// Second-pass ceiling is max(RetryFloor, TargetTotal*RetryMultiplier)
	RetryFloor      int `yaml:"retry_floor" json:"retry_floor"`
	RetryMultiplier int `yaml:"retry_multiplier" json:"retry_multiplier"`

	// A batch counts as capped once it reaches min(TargetTotal, CeilingThreshold)
	CeilingThreshold int `yaml:"ceiling_threshold" json:"ceiling_threshold"`

	// IANA zone used for day boundaries and zone-less timestamps
	Timezone string `yaml:"timezone" json:"timezone"`
}

// OutputConfig holds export artifact configuration
type OutputConfig struct {
	Directory         string `yaml:"directory" json:"directory"`
	Format            string `yaml:"format" json:"format"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
	SaveSummary       bool   `yaml:"save_summary" json:"save_summary"`
	SummaryFormat     string `yaml:"summary_format" json:"summary_format"`
	PreviewCount      int    `yaml:"preview_count" json:"preview_count"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Limits accepted for per-page and target total
const (
	MaxPerPage     = 100
	MaxTargetTotal = 20000
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Apify: ApifyConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  300 * time.Second,
		},
		Fetch: FetchConfig{
			PerPage:          100,
			TargetTotal:      100,
			RetryFloor:       10000,
			RetryMultiplier:  2,
			CeilingThreshold: 1000,
			Timezone:         "UTC",
		},
		Output: OutputConfig{
			Directory:         ".",
			Format:            "csv",
			OverwriteExisting: false,
			SaveSummary:       false,
			SummaryFormat:     "yaml",
			PreviewCount:      3,
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// APIFY_TOKEN is what the hosted app used; the prefixed name wins
	if token := os.Getenv("APIFY_TOKEN"); token != "" {
		c.Apify.Token = token
	}
	if token := os.Getenv("LIEXPORT_APIFY_TOKEN"); token != "" {
		c.Apify.Token = token
	}
	if endpoint := os.Getenv("LIEXPORT_ENDPOINT"); endpoint != "" {
		c.Apify.Endpoint = endpoint
	}
	if timeout := os.Getenv("LIEXPORT_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid LIEXPORT_TIMEOUT: %w", err)
		}
		c.Apify.Timeout = d
	}

	intVars := map[string]*int{
		"LIEXPORT_PER_PAGE":          &c.Fetch.PerPage,
		"LIEXPORT_TARGET_TOTAL":      &c.Fetch.TargetTotal,
		"LIEXPORT_RETRY_FLOOR":       &c.Fetch.RetryFloor,
		"LIEXPORT_RETRY_MULTIPLIER":  &c.Fetch.RetryMultiplier,
		"LIEXPORT_CEILING_THRESHOLD": &c.Fetch.CeilingThreshold,
	}
	for name, dst := range intVars {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = val
	}

	if tz := os.Getenv("LIEXPORT_TIMEZONE"); tz != "" {
		c.Fetch.Timezone = tz
	}
	if outputDir := os.Getenv("LIEXPORT_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format := os.Getenv("LIEXPORT_FORMAT"); format != "" {
		c.Output.Format = format
	}
	if notifEnabled := os.Getenv("LIEXPORT_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}
	if logLevel := os.Getenv("LIEXPORT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// ConfigLocations lists the files searched when no path is given, in order
func ConfigLocations() []string {
	home := os.Getenv("HOME")
	return []string{
		"liexport.yaml",
		".liexport.yaml",
		".liexport.yml",
		filepath.Join(home, ".config", "liexport", "config.yaml"),
		filepath.Join(home, ".config", "liexport", "config.yml"),
		filepath.Join(home, ".liexport.yaml"),
	}
}

// FindConfigFile returns the first existing file from ConfigLocations
func FindConfigFile() string {
	for _, loc := range ConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Fetch.Timezone == "" || strings.EqualFold(c.Fetch.Timezone, "utc") {
		return time.UTC, nil
	}
	if strings.EqualFold(c.Fetch.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Fetch.Timezone)
}

// Validate checks if the configuration is valid. The token is not
// checked here; it may still come from the credential store.
func (c *Config) Validate() error {
	var errs []error

	if c.Apify.Endpoint == "" {
		errs = append(errs, errors.New("apify endpoint is required"))
	}
	if c.Apify.Timeout <= 0 {
		errs = append(errs, errors.New("apify timeout must be positive"))
	}

	if c.Fetch.PerPage < 1 || c.Fetch.PerPage > MaxPerPage {
		errs = append(errs, fmt.Errorf("per_page must be between 1 and %d", MaxPerPage))
	}
	if c.Fetch.TargetTotal < 1 || c.Fetch.TargetTotal > MaxTargetTotal {
		errs = append(errs, fmt.Errorf("target_total must be between 1 and %d", MaxTargetTotal))
	}
	if c.Fetch.RetryFloor < 1 {
		errs = append(errs, errors.New("retry_floor must be positive"))
	}
	if c.Fetch.RetryMultiplier < 1 {
		errs = append(errs, errors.New("retry_multiplier must be at least 1"))
	}
	if c.Fetch.CeilingThreshold < 1 {
		errs = append(errs, errors.New("ceiling_threshold must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q", c.Fetch.Timezone))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	validFormats := map[string]bool{"csv": true, "json": true}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, errors.New("output format must be csv or json"))
	}
	validSummaryFormats := map[string]bool{"yaml": true, "json": true}
	if !validSummaryFormats[strings.ToLower(c.Output.SummaryFormat)] {
		errs = append(errs, errors.New("summary format must be yaml or json"))
	}
	if c.Output.PreviewCount < 0 {
		errs = append(errs, errors.New("preview count cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Apify.Token = token
	}
	if endpoint, ok := flags["endpoint"].(string); ok && endpoint != "" {
		c.Apify.Endpoint = endpoint
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Apify.Timeout = timeout
	}
	if perPage, ok := flags["per-page"].(int); ok {
		c.Fetch.PerPage = perPage
	}
	if total, ok := flags["target-total"].(int); ok {
		c.Fetch.TargetTotal = total
	}
	if tz, ok := flags["timezone"].(string); ok && tz != "" {
		c.Fetch.Timezone = tz
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = strings.ToLower(format)
	}
	if overwrite, ok := flags["overwrite"].(bool); ok {
		c.Output.OverwriteExisting = overwrite
	}
	if summary, ok := flags["summary"].(bool); ok {
		c.Output.SaveSummary = summary
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".liexport.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
