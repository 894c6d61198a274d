package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *RunSummary {
	started := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	s := &RunSummary{
		RunID:          "0b6a2f4e-7f43-4a8e-9d57-1b1d2b0e8c11",
		ProfileURL:     "https://www.linkedin.com/in/janedoe/",
		Username:       "janedoe",
		From:           "2025-01-01",
		To:             "2025-06-30",
		Timezone:       "UTC",
		PerPage:        100,
		TargetTotal:    1000,
		Requests:       2,
		Widened:        true,
		Ceiling:        10000,
		TotalRetrieved: 1450,
		InRange:        37,
		NewestPost:     "2025-06-28 08:00:00",
		OldestPost:     "2025-01-03 17:30:00",
		Format:         "csv",
		StartedAt:      started,
	}
	s.Finish(started.Add(42 * time.Second))
	return s
}

func TestFinish(t *testing.T) {
	s := sampleSummary()
	assert.Equal(t, 42*time.Second, s.Duration)
	assert.Equal(t, s.StartedAt.Add(42*time.Second), s.FinishedAt)
}

func TestSummaryPath(t *testing.T) {
	assert.Equal(t, "out/a.csv.summary.yaml", SummaryPath("out/a.csv", "yaml"))
	assert.Equal(t, "out/a.csv.summary.yaml", SummaryPath("out/a.csv", ""))
	assert.Equal(t, "out/a.csv.summary.json", SummaryPath("out/a.csv", "JSON"))
}

func TestSaveAndLoad(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			artifact := filepath.Join(t.TempDir(), "linkedin_posts_2025-01-01_to_2025-06-30.csv")
			s := sampleSummary()
			s.Artifact = artifact

			assert.False(t, Exists(artifact, format))
			path, err := s.Save(artifact, format)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(path, "."+format))
			assert.True(t, Exists(artifact, format))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, s.RunID, loaded.RunID)
			assert.Equal(t, s.InRange, loaded.InRange)
			assert.Equal(t, s.Widened, loaded.Widened)
			assert.Equal(t, s.Duration, loaded.Duration)
			assert.True(t, s.StartedAt.Equal(loaded.StartedAt))
		})
	}
}

func TestMarshalYAMLKeys(t *testing.T) {
	data, err := sampleSummary().Marshal(FormatYAML)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "run_id: 0b6a2f4e-7f43-4a8e-9d57-1b1d2b0e8c11")
	assert.Contains(t, out, "total_retrieved: 1450")
	assert.Contains(t, out, "in_range: 37")
	assert.NotContains(t, out, "artifact:")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.summary.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.summary.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}
