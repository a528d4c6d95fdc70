package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/merchstats/config"
)

func TestNewLimits_Fallbacks(t *testing.T) {
	l := NewLimits(0, 0)
	require.Equal(t, config.DefaultMaxConcurrentRequests, l.MaxConcurrentRequests)
	require.Equal(t, config.DefaultMaxOpenDatasets, l.MaxOpenDatasets)
	require.Equal(t, config.DefaultHistogramStep, l.HistogramStep)

	l = NewLimits(3, 2)
	require.Equal(t, 3, l.MaxConcurrentRequests)
	require.Equal(t, 2, l.MaxOpenDatasets)
}

func TestFromSettings_Overrides(t *testing.T) {
	s := config.Settings{
		MaxConcurrentRequests: 4,
		MaxOpenDatasets:       2,
		TopN:                  7,
		HistogramStep:         0.1,
		OperationTimeout:      3 * time.Second,
	}
	l := FromSettings(s)
	require.Equal(t, 4, l.MaxConcurrentRequests)
	require.Equal(t, 7, l.TopN)
	require.Equal(t, 0.1, l.HistogramStep)
	require.Equal(t, 3*time.Second, l.OperationTimeout)
	// Unset fields keep their defaults.
	require.Equal(t, config.DefaultMaxRowsPerBatch, l.MaxRowsPerBatch)
}
