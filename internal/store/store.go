// Package store holds the working datasets between tool calls. Each handle
// wraps an immutable metrics.Dataset value that merges replace wholesale; a
// version counter lets cursors and callers detect a dataset changing under
// them. Handles expire after an idle TTL, mirroring short-lived analysis
// sessions.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vinodismyname/merchstats/config"
	"github.com/vinodismyname/merchstats/internal/metrics"
)

// ErrDatasetNotFound indicates an unknown or expired dataset ID.
var ErrDatasetNotFound = errors.New("store: dataset not found")

// Handle pairs a dataset value with TTL metadata. The value is replaced, not
// mutated, on merge; readers always observe a consistent snapshot.
type Handle struct {
	ID        string
	LoadedAt  time.Time
	ExpiresAt time.Time

	mu      sync.RWMutex
	ds      metrics.Dataset
	version int64
}

// DatasetGate coordinates capacity for open dataset handles (backed by
// runtime.Controller).
type DatasetGate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// Info summarizes a handle for discovery tools.
type Info struct {
	ID       string    `json:"dataset_id"`
	Rows     int       `json:"rows"`
	Months   []string  `json:"months"`
	Version  int64     `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store is the lifecycle manager for dataset handles with TTL eviction.
type Store struct {
	mu           sync.RWMutex
	handles      map[string]*Handle
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         DatasetGate
	stopCh       chan struct{}
	cleanupWG    sync.WaitGroup
}

// New constructs a Store. Pass ttl or cleanupEvery <= 0 for defaults from
// config; gate may be nil for tests and clock defaults to time.Now.
func New(ttl, cleanupEvery time.Duration, gate DatasetGate, clock func() time.Time) *Store {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		handles:      make(map[string]*Handle),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
	}
}

// Start launches periodic eviction of expired handles.
func (s *Store) Start() {
	s.cleanupWG.Add(1)
	ticker := time.NewTicker(s.cleanupEvery)
	go func() {
		defer s.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.EvictExpired()
			}
		}
	}()
}

// Close stops the cleanup loop and releases all handles.
func (s *Store) Close(ctx context.Context) error {
	close(s.stopCh)
	done := make(chan struct{})
	go func() { s.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.handles {
		delete(s.handles, id)
		if s.gate != nil {
			s.gate.ReleaseDataset()
		}
	}
	return nil
}

// Create registers an empty dataset handle and returns its ID. Capacity is
// enforced via the gate when provided.
func (s *Store) Create(ctx context.Context) (string, error) {
	if s.gate != nil {
		if err := s.gate.AcquireDataset(ctx); err != nil {
			return "", err
		}
	}
	now := s.clock()
	h := &Handle{
		ID:        uuid.NewString(),
		LoadedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.handles[h.ID] = h
	s.mu.Unlock()
	return h.ID, nil
}

// Get returns the handle when present and refreshes its idle TTL.
func (s *Store) Get(id string) (*Handle, bool) {
	s.mu.RLock()
	h, ok := s.handles[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	h.ExpiresAt = s.clock().Add(s.ttl)
	s.mu.Unlock()
	return h, true
}

// Merge folds an incoming batch into the handle's dataset under the handle
// lock, serializing concurrent merges, and bumps the version. The merged
// snapshot and new version are returned.
func (s *Store) Merge(id string, incoming []metrics.Row, mode metrics.MergeMode, batchMonth string) (metrics.Dataset, int64, error) {
	h, ok := s.Get(id)
	if !ok {
		return nil, 0, ErrDatasetNotFound
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ds = metrics.Merge(h.ds, incoming, mode, batchMonth)
	h.version++
	return h.ds, h.version, nil
}

// Snapshot returns the current dataset value and version. The value is safe
// to read concurrently: merges replace it rather than mutating rows.
func (s *Store) Snapshot(id string) (metrics.Dataset, int64, error) {
	h, ok := s.Get(id)
	if !ok {
		return nil, 0, ErrDatasetNotFound
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ds, h.version, nil
}

// CloseHandle removes a handle by ID and releases gate capacity.
func (s *Store) CloseHandle(id string) error {
	s.mu.Lock()
	_, ok := s.handles[id]
	if ok {
		delete(s.handles, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrDatasetNotFound
	}
	if s.gate != nil {
		s.gate.ReleaseDataset()
	}
	return nil
}

// EvictExpired removes handles past their idle TTL.
func (s *Store) EvictExpired() {
	now := s.clock()
	var expired []string

	s.mu.RLock()
	for id, h := range s.handles {
		if now.After(h.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.mu.Lock()
		_, ok := s.handles[id]
		if ok {
			delete(s.handles, id)
		}
		s.mu.Unlock()
		if ok && s.gate != nil {
			s.gate.ReleaseDataset()
		}
	}
}

// Count returns the number of live handles.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handles)
}

// List summarizes all live handles for discovery.
func (s *Store) List() []Info {
	s.mu.RLock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.RUnlock()

	infos := make([]Info, 0, len(handles))
	for _, h := range handles {
		h.mu.RLock()
		infos = append(infos, Info{
			ID:       h.ID,
			Rows:     len(h.ds),
			Months:   h.ds.Months(),
			Version:  h.version,
			LoadedAt: h.LoadedAt,
		})
		h.mu.RUnlock()
	}
	return infos
}
