package metrics

import (
	"fmt"
	"math"
	"sort"
)

// The four aggregators are independent pure projections over the same
// filtered row set. They recompute from scratch on every call; volumes are
// dashboard-scale, so no incremental caching is attempted.

// Pareto groups by merchant, sums open amounts, and computes the cumulative
// share of total in descending value order. A zero total is floored to 1 so
// the degenerate all-zero set yields defined (raw-sum) shares, not an error.
func Pareto(ds Dataset) []ParetoPoint {
	sums := groupSum(ds, func(r Row) string { return r.Merchant }, func(r Row) float64 { return r.Open })

	var total float64
	for _, kv := range sums {
		total += kv.v
	}
	if total == 0 {
		total = 1
	}

	out := make([]ParetoPoint, 0, len(sums))
	var running float64
	for _, kv := range sums {
		running += kv.v
		out = append(out, ParetoPoint{
			Category:           kv.k,
			Value:              kv.v,
			CumulativeSharePct: round2(running / total * 100),
		})
	}
	return out
}

// Histogram bins ratio values into contiguous fixed-width bins of the given
// step. The binned range extends one step beyond min and max so the edge bins
// are never degenerate; a value exactly on the ceiling is clamped into the
// last bin. An empty input yields an empty bin list.
func Histogram(ds Dataset, step float64) []HistogramBin {
	if len(ds) == 0 || step <= 0 {
		return nil
	}

	minR, maxR := ds[0].Ratio, ds[0].Ratio
	for _, row := range ds[1:] {
		if row.Ratio < minR {
			minR = row.Ratio
		}
		if row.Ratio > maxR {
			maxR = row.Ratio
		}
	}

	lower := math.Floor((minR-step)/step) * step
	upper := math.Ceil((maxR+step)/step) * step
	binCount := int(math.Round((upper - lower) / step))
	if binCount < 1 {
		binCount = 1
	}

	bins := make([]HistogramBin, binCount)
	for i := range bins {
		lo := lower + float64(i)*step
		hi := lo + step
		bins[i] = HistogramBin{
			RangeLabel: fmt.Sprintf("%.1f%%~%.1f%%", lo*100, hi*100),
			LowerBound: lo,
			UpperBound: hi,
		}
	}

	eps := step * 1e-9
	for _, row := range ds {
		x := math.Min(row.Ratio, upper-eps)
		idx := int(math.Floor((x - lower) / step))
		if idx < 0 {
			idx = 0
		}
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx].Count++
	}
	return bins
}

// RevenueShare groups by agent and sums revenue amounts, descending.
func RevenueShare(ds Dataset) []ShareEntry {
	sums := groupSum(ds, func(r Row) string { return r.Agent }, func(r Row) float64 { return r.Revenue })
	out := make([]ShareEntry, len(sums))
	for i, kv := range sums {
		out[i] = ShareEntry{Category: kv.k, Value: kv.v}
	}
	return out
}

// TopMerchants returns the top n merchants by summed open amount, reversed to
// ascending order. The reversal is a horizontal-bar rendering convention;
// non-chart consumers may re-sort freely.
func TopMerchants(ds Dataset, n int) []TopNEntry {
	sums := groupSum(ds, func(r Row) string { return r.Merchant }, func(r Row) float64 { return r.Open })
	if n > 0 && len(sums) > n {
		sums = sums[:n]
	}
	out := make([]TopNEntry, len(sums))
	for i, kv := range sums {
		out[len(sums)-1-i] = TopNEntry{Category: kv.k, Value: kv.v}
	}
	return out
}

type kv struct {
	k string
	v float64
}

// groupSum accumulates value(row) by key(row) and returns the pairs sorted
// descending by value, name ascending on ties for deterministic output.
func groupSum(ds Dataset, key func(Row) string, value func(Row) float64) []kv {
	acc := make(map[string]float64, 16)
	for _, row := range ds {
		acc[key(row)] += value(row)
	}
	arr := make([]kv, 0, len(acc))
	for k, v := range acc {
		arr = append(arr, kv{k: k, v: v})
	}
	sort.SliceStable(arr, func(i, j int) bool {
		if arr[i].v == arr[j].v {
			return arr[i].k < arr[j].k
		}
		return arr[i].v > arr[j].v
	})
	return arr
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
