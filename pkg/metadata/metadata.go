package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// RunSummary describes one export run. It is written next to the artifact.
type RunSummary struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	ProfileURL string `json:"profile_url" yaml:"profile_url"`
	Username   string `json:"username" yaml:"username"`

	// Requested window, as calendar days
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Timezone string `json:"timezone" yaml:"timezone"`

	// Fetch sizing and what the fetch did with it
	PerPage     int  `json:"per_page" yaml:"per_page"`
	TargetTotal int  `json:"target_total" yaml:"target_total"`
	Requests    int  `json:"requests" yaml:"requests"`
	Widened     bool `json:"widened" yaml:"widened"`
	Ceiling     int  `json:"ceiling" yaml:"ceiling"`

	TotalRetrieved int `json:"total_retrieved" yaml:"total_retrieved"`
	InRange        int `json:"in_range" yaml:"in_range"`

	// Newest and oldest in-range post dates as reported by the actor
	NewestPost string `json:"newest_post,omitempty" yaml:"newest_post,omitempty"`
	OldestPost string `json:"oldest_post,omitempty" yaml:"oldest_post,omitempty"`

	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Format   string `json:"format" yaml:"format"`

	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Finish stamps the end time and duration
func (s *RunSummary) Finish(now time.Time) {
	s.FinishedAt = now
	s.Duration = now.Sub(s.StartedAt)
}

// SummaryPath returns the sidecar path for an artifact
func SummaryPath(artifactPath, format string) string {
	if normalizeFormat(format) == FormatJSON {
		return artifactPath + ".summary.json"
	}
	return artifactPath + ".summary.yaml"
}

func normalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Marshal encodes the summary in the given format (yaml or json)
func (s *RunSummary) Marshal(format string) ([]byte, error) {
	if normalizeFormat(format) == FormatJSON {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal summary: %w", err)
		}
		return append(data, '\n'), nil
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

// Save writes the summary next to artifactPath and returns the sidecar path
func (s *RunSummary) Save(artifactPath, format string) (string, error) {
	path := SummaryPath(artifactPath, format)

	data, err := s.Marshal(format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return path, nil
}

// Load reads a summary sidecar; the format follows the file extension
func Load(path string) (*RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}

	var s RunSummary
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &s, nil
}

// Exists checks if a summary sidecar exists for an artifact
func Exists(artifactPath, format string) bool {
	_, err := os.Stat(SummaryPath(artifactPath, format))
	return err == nil
}
