package metrics

import "sort"

// MergeMode selects how an incoming batch combines with the working dataset.
type MergeMode int

const (
	// Append concatenates the incoming batch after the existing rows.
	Append MergeMode = iota
	// Replace discards the existing dataset in favor of the incoming batch.
	Replace
)

// Merge combines an incoming batch into the working dataset, producing a new
// Dataset value (copy-on-write; neither input is mutated). Incoming rows
// without a resolved month receive the normalized batch fallback, or the
// unspecified sentinel when that too is absent.
//
// No deduplication is performed: repeated ingestion of the same
// agent/merchant/month data double-counts in every downstream aggregate. This
// is a deliberate trade-off — no canonical row identity exists, so callers
// wanting idempotent re-upload must dedupe upstream.
func Merge(existing Dataset, incoming []Row, mode MergeMode, batchMonth string) Dataset {
	fallback := MonthUnspecified
	if m, ok := NormalizeMonth(batchMonth); ok {
		fallback = m
	}

	merged := make([]Row, len(incoming))
	for i, row := range incoming {
		if row.Month == "" {
			row.Month = fallback
		}
		merged[i] = row
	}

	if mode == Replace {
		return merged
	}
	out := make(Dataset, 0, len(existing)+len(merged))
	out = append(out, existing...)
	out = append(out, merged...)
	return out
}

// Months returns the sorted distinct months present in the dataset. Callers
// owning period selectors refresh them from this after every merge.
func (d Dataset) Months() []string {
	seen := make(map[string]struct{}, 8)
	for _, row := range d {
		seen[row.Month] = struct{}{}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	// Lexicographic order is chronological for YYYY-MM; the unspecified
	// sentinel sorts after all year tokens.
	sort.Strings(months)
	return months
}
