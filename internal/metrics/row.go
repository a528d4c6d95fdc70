// Package metrics implements the normalization, aggregation, and comparison
// engine for per-merchant business metrics. All operations are pure functions
// over in-memory collections: ingestion maps heterogeneous raw records into
// canonical rows, merges accumulate them into an immutable dataset value, and
// the aggregators/comparator are projections that never mutate their inputs.
package metrics

// Row is the canonical record: one agent/merchant/period observation with an
// open amount, a revenue amount, and a stored ratio.
//
// Ratio is revenue/open at ingestion time unless the source record carried an
// explicit ratio field, in which case the explicit value is stored and may
// diverge from revenue/open (source data can encode a differently-scoped
// ratio). It is never recomputed downstream.
type Row struct {
	// Month is a canonical "YYYY-MM" token or MonthUnspecified. Empty only
	// transiently between ToRow and Merge, never inside a working dataset.
	Month    string  `json:"month"`
	Agent    string  `json:"agent"`
	Merchant string  `json:"merchant"`
	Open     float64 `json:"open_amount"`
	Revenue  float64 `json:"revenue_amount"`
	Ratio    float64 `json:"ratio"`

	// Extra carries pass-through fields (machine count, remarks, flags,
	// operating hours) preserved for display only. Values are limited to
	// string, float64, or bool.
	Extra map[string]any `json:"extra,omitempty"`
}

// Dataset is the ordered working collection of rows. Order matters only for
// display; every aggregation over it is order-independent.
type Dataset []Row

// ParetoPoint is one merchant on the concentration curve, descending by
// summed open amount with a monotonically non-decreasing cumulative share.
type ParetoPoint struct {
	Category           string  `json:"category"`
	Value              float64 `json:"value"`
	CumulativeSharePct float64 `json:"cumulative_share_pct"`
}

// HistogramBin is one fixed-width ratio bin. Bins are contiguous and every
// row of the input falls into exactly one of them.
type HistogramBin struct {
	RangeLabel string  `json:"range_label"`
	Count      int     `json:"count"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ShareEntry is one agent's summed revenue, descending.
type ShareEntry struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// TopNEntry is one of the top-N merchants by summed open amount. The slice is
// returned ascending as a horizontal-bar rendering convention.
type TopNEntry struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// ComparisonRow is one outer-join key across two month partitions. A period
// lacking the key contributes zeros for its side; deltas are B minus A.
type ComparisonRow struct {
	Agent        string  `json:"agent"`
	Merchant     string  `json:"merchant"`
	OpenA        float64 `json:"open_a"`
	OpenB        float64 `json:"open_b"`
	DeltaOpen    float64 `json:"delta_open"`
	RevenueA     float64 `json:"revenue_a"`
	RevenueB     float64 `json:"revenue_b"`
	DeltaRevenue float64 `json:"delta_revenue"`
	RatioA       float64 `json:"ratio_a"`
	RatioB       float64 `json:"ratio_b"`
	DeltaRatio   float64 `json:"delta_ratio"`
}
