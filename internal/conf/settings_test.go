package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default()
	assert.Equal(t, time.Minute, s.Scheduler.Interval.Std())
	assert.Equal(t, 500, s.Scheduler.MaxCardsPerRule)
	assert.Equal(t, 30, s.Runs.RetentionDays)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scheduler:
  interval: 30s
  max_cards_per_rule: 100
runs:
  retention_days: 7
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, s.Scheduler.Interval.Std())
	assert.Equal(t, 100, s.Scheduler.MaxCardsPerRule)
	assert.Equal(t, 7, s.Runs.RetentionDays)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  interval: 2m\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, s.Scheduler.Interval.Std())
	assert.Equal(t, 500, s.Scheduler.MaxCardsPerRule)
	assert.Equal(t, 30, s.Runs.RetentionDays)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	// Defaults are still returned so callers can proceed.
	assert.Equal(t, time.Minute, s.Scheduler.Interval.Std())
}

func TestLoad_NormalizesInvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scheduler:
  interval: 0s
  max_cards_per_rule: -5
runs:
  retention_days: -1
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.Scheduler.Interval.Std())
	assert.Equal(t, 500, s.Scheduler.MaxCardsPerRule)
	assert.Equal(t, 0, s.Runs.RetentionDays)
}
