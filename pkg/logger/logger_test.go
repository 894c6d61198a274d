package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liexport/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level: "info",
				File:  filepath.Join(t.TempDir(), "logs", "liexport.log"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"chatty", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, expected %v", tt.level, level, tt.expected)
			}
		})
	}
}

func TestFileOutputWritesJSON(t *testing.T) {
	var console bytes.Buffer
	prev := Output
	Output = &console
	defer func() { Output = prev }()

	path := filepath.Join(t.TempDir(), "run.log")
	log, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	log.WithField("username", "janedoe").Info("fetch started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"username":"janedoe"`)
	assert.Contains(t, string(data), `"app":"liexport"`)
	assert.Contains(t, console.String(), "fetch started")
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	defer func() { Output = prev }()

	parent, err := New(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)

	child := parent.WithFields(map[string]interface{}{"run_id": "abc"})
	parent.Info("parent line")
	child.Info("child line")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "run_id")
	assert.Contains(t, lines[1], "run_id")
}

func TestRedactURL(t *testing.T) {
	redacted := RedactURL("https://api.apify.com/v2/acts/x/run-sync-get-dataset-items?token=secret123")
	assert.NotContains(t, redacted, "secret123")
	assert.Contains(t, redacted, "token=REDACTED")

	assert.Equal(t, "https://example.com/path", RedactURL("https://example.com/path"))
}

func TestLogRequestLevels(t *testing.T) {
	log := NewTestLogger()

	LogRequest(log, "POST", "http://actor?token=abc", 200, 12.5)
	LogRequest(log, "POST", "http://actor?token=abc", 404, 3)
	LogRequest(log, "POST", "http://actor?token=abc", 500, 3)

	msgs := log.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "DEBUG", msgs[0].Level)
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.Equal(t, "ERROR", msgs[2].Level)
	assert.NotContains(t, msgs[0].Fields["url"], "abc")
}

func TestTestLoggerChildrenShareCapture(t *testing.T) {
	log := NewTestLogger()
	cause := errors.New("boom")

	log.WithField("username", "janedoe").WithError(cause).Error("fetch failed")
	log.Info("plain")

	msg, ok := log.FindMessage("fetch failed")
	require.True(t, ok)
	assert.Equal(t, "janedoe", msg.Fields["username"])
	assert.Equal(t, cause, msg.Error)
	assert.True(t, log.HasError())
	assert.Len(t, log.GetMessagesByLevel("INFO"), 1)

	log.Clear()
	assert.Empty(t, log.GetMessages())
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.WithField("k", "v").WithError(errors.New("x")).ErrorWithFields("ignored", nil)
	assert.NotNil(t, log.GetZerolog())
}
