package main

import (
	"bytes"
	stderrors "errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liexport/pkg/errors"
	"liexport/pkg/ui"
)

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("2025-01-01", "2025-01-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestParseRangeDefaultsToToday(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	_, to, err := parseRange(DefaultFromDate, "", loc)
	require.NoError(t, err)

	ty, tm, td := time.Now().In(loc).Date()
	y, m, d := to.Date()
	assert.Equal(t, []int{ty, int(tm), td}, []int{y, int(m), d})
}

func TestParseRangeRejectsBadDays(t *testing.T) {
	_, _, err := parseRange("01/02/2025", "", time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInput))
	assert.Contains(t, err.Error(), "--from")

	_, _, err = parseRange("2025-01-01", "2025-13-01", time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindInput))
	assert.Contains(t, err.Error(), "--to")
}

func TestExportFlagMapOnlyChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "export"}
	addExportFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--per-page", "50", "--format", "JSON", "--overwrite"}))

	flags := exportFlagMap(cmd)
	assert.Equal(t, 50, flags["per-page"])
	assert.Equal(t, "JSON", flags["format"])
	assert.Equal(t, true, flags["overwrite"])

	_, ok := flags["target-total"]
	assert.False(t, ok)
	_, ok = flags["token"]
	assert.False(t, ok)
}

func TestRenderErrorByKind(t *testing.T) {
	var buf bytes.Buffer
	old := ui.Out
	ui.Out = &buf
	defer func() { ui.Out = old }()

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"input", errors.Input("validate", "profile URL is required"), []string{"Invalid input", "profile URL is required", "--help"}},
		{"upstream", errors.Upstream(500, "Internal Server Error"), []string{"Apify returned status 500", "Internal Server Error"}},
		{"upstream transport", errors.UpstreamErr("call actor", stderrors.New("connection refused")), []string{"Apify request failed", "connection refused"}},
		{"internal", stderrors.New("disk full"), []string{"Error", "disk full"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			renderError(tt.err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}
