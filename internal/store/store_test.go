package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/merchstats/internal/metrics"
)

// fakeGate implements DatasetGate for tests with counters.
type fakeGate struct {
	acquireErr error
	acquires   atomic.Int64
	releases   atomic.Int64
}

func (g *fakeGate) AcquireDataset(ctx context.Context) error {
	g.acquires.Add(1)
	return g.acquireErr
}
func (g *fakeGate) ReleaseDataset() { g.releases.Add(1) }

func TestCreateMergeSnapshot(t *testing.T) {
	gate := &fakeGate{}
	s := New(time.Minute, time.Second, gate, time.Now)

	id, err := s.Create(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, int64(1), gate.acquires.Load())

	ds, v, err := s.Snapshot(id)
	require.NoError(t, err)
	require.Empty(t, ds)
	require.Zero(t, v)

	rows := []metrics.Row{{Agent: "A", Merchant: "M", Open: 10}}
	ds, v, err = s.Merge(id, rows, metrics.Append, "2025-07")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, int64(1), v)
	require.Equal(t, "2025-07", ds[0].Month)

	// Replace resets the rows but keeps bumping the version.
	ds, v, err = s.Merge(id, nil, metrics.Replace, "")
	require.NoError(t, err)
	require.Empty(t, ds)
	require.Equal(t, int64(2), v)
}

func TestSnapshotIsolatedFromLaterMerges(t *testing.T) {
	s := New(time.Minute, time.Second, nil, nil)
	id, err := s.Create(context.Background())
	require.NoError(t, err)

	_, _, err = s.Merge(id, []metrics.Row{{Agent: "A", Merchant: "M"}}, metrics.Append, "2025-06")
	require.NoError(t, err)
	before, v1, err := s.Snapshot(id)
	require.NoError(t, err)

	_, _, err = s.Merge(id, []metrics.Row{{Agent: "B", Merchant: "N"}}, metrics.Append, "2025-07")
	require.NoError(t, err)

	// The earlier snapshot value is unchanged; only the version moved on.
	require.Len(t, before, 1)
	_, v2, err := s.Snapshot(id)
	require.NoError(t, err)
	require.Greater(t, v2, v1)
}

func TestCloseHandleReleasesCapacity(t *testing.T) {
	gate := &fakeGate{}
	s := New(time.Minute, time.Second, gate, nil)

	id, err := s.Create(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	require.NoError(t, s.CloseHandle(id))
	require.Equal(t, 0, s.Count())
	require.Equal(t, int64(1), gate.releases.Load())

	require.ErrorIs(t, s.CloseHandle(id), ErrDatasetNotFound)
}

func TestTTLEviction(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Now().UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	gate := &fakeGate{}
	s := New(50*time.Millisecond, 5*time.Millisecond, gate, clock)

	_, err := s.Create(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	now.Add(int64(100 * time.Millisecond))
	s.EvictExpired()
	require.Equal(t, 0, s.Count())
	require.Equal(t, int64(1), gate.releases.Load())
}

func TestUnknownDataset(t *testing.T) {
	s := New(time.Minute, time.Second, nil, nil)
	_, _, err := s.Snapshot("missing")
	require.ErrorIs(t, err, ErrDatasetNotFound)
	_, _, err = s.Merge("missing", nil, metrics.Append, "")
	require.ErrorIs(t, err, ErrDatasetNotFound)
}
