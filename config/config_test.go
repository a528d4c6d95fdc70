package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DefaultMaxConcurrentRequests, s.MaxConcurrentRequests)
	require.Equal(t, DefaultHistogramStep, s.HistogramStep)
	require.Equal(t, DefaultDatasetIdleTTL, s.DatasetIdleTTL)
	require.Empty(t, s.AllowedDirs)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MERCHSTATS_MAX_OPEN_DATASETS", "3")
	t.Setenv("MERCHSTATS_OPERATION_TIMEOUT", "5s")
	t.Setenv("MERCHSTATS_ALLOWED_DIRS", "/data/in:/data/drop")

	s, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 3, s.MaxOpenDatasets)
	require.Equal(t, 5*time.Second, s.OperationTimeout)
	require.Equal(t, []string{"/data/in", "/data/drop"}, s.AllowedDirs)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "top_n: 5\nhistogram_step: 0.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "merchstats.yaml"), []byte(yaml), 0o600))

	s, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 5, s.TopN)
	require.Equal(t, 0.1, s.HistogramStep)
}
