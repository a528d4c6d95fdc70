package config

import "time"

// Default runtime limits and analysis parameters for the merchant metrics
// server. Conservative values; override via environment or config file (see
// Load). Referenced by internal/runtime and the tool registry.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 8

	// Batch and payload limits
	DefaultMaxRowsPerBatch = 50_000
	DefaultMaxPayloadBytes = 128 * 1024 // 128KB
	DefaultPreviewRowLimit = 50

	// Analysis parameters
	DefaultHistogramStep = 0.05 // 5 percentage points per ratio bin
	DefaultTopN          = 10
)

const (
	// Timeouts and handle lifetimes
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
	DefaultDatasetIdleTTL        = 30 * time.Minute
	DefaultDatasetCleanupPeriod  = time.Minute
)
