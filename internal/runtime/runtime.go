package runtime

import (
	"context"
	"time"

	"github.com/vinodismyname/merchstats/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and dataset guardrails configured for the
// server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int
	MaxOpenDatasets       int

	// Batch and payload bounds
	MaxRowsPerBatch int
	MaxPayloadBytes int
	PreviewRowLimit int

	// Analysis defaults
	HistogramStep float64
	TopN          int

	// Timeouts
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with sensible fallbacks when values are unset.
func NewLimits(maxConcurrentRequests, maxOpenDatasets int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if maxOpenDatasets <= 0 {
		maxOpenDatasets = config.DefaultMaxOpenDatasets
	}

	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		MaxOpenDatasets:       maxOpenDatasets,
		MaxRowsPerBatch:       config.DefaultMaxRowsPerBatch,
		MaxPayloadBytes:       config.DefaultMaxPayloadBytes,
		PreviewRowLimit:       config.DefaultPreviewRowLimit,
		HistogramStep:         config.DefaultHistogramStep,
		TopN:                  config.DefaultTopN,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// FromSettings builds Limits from resolved configuration.
func FromSettings(s config.Settings) Limits {
	l := NewLimits(s.MaxConcurrentRequests, s.MaxOpenDatasets)
	if s.MaxRowsPerBatch > 0 {
		l.MaxRowsPerBatch = s.MaxRowsPerBatch
	}
	if s.MaxPayloadBytes > 0 {
		l.MaxPayloadBytes = s.MaxPayloadBytes
	}
	if s.PreviewRowLimit > 0 {
		l.PreviewRowLimit = s.PreviewRowLimit
	}
	if s.HistogramStep > 0 {
		l.HistogramStep = s.HistogramStep
	}
	if s.TopN > 0 {
		l.TopN = s.TopN
	}
	if s.OperationTimeout > 0 {
		l.OperationTimeout = s.OperationTimeout
	}
	if s.AcquireRequestTimeout > 0 {
		l.AcquireRequestTimeout = s.AcquireRequestTimeout
	}
	return l
}

// Controller coordinates runtime semaphores for request and dataset
// guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	datasetSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		datasetSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenDatasets)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireDataset reserves an open dataset slot.
func (c *Controller) AcquireDataset(ctx context.Context) error {
	return c.datasetSemaphore.Acquire(ctx, 1)
}

// ReleaseDataset frees an open dataset slot.
func (c *Controller) ReleaseDataset() {
	c.datasetSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and
// discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
