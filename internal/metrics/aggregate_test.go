package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPareto_SpecimenShares(t *testing.T) {
	ds := Dataset{
		{Agent: "X", Merchant: "M1", Open: 1200000, Revenue: 300000, Ratio: 0.25},
		{Agent: "X", Merchant: "M2", Open: 900000, Revenue: 210000, Ratio: 210000.0 / 900000.0},
	}
	points := Pareto(ds)
	require.Len(t, points, 2)
	require.Equal(t, "M1", points[0].Category)
	require.InDelta(t, 57.14, points[0].CumulativeSharePct, 0.01)
	require.Equal(t, "M2", points[1].Category)
	require.InDelta(t, 100.0, points[1].CumulativeSharePct, 0.01)
}

func TestPareto_MonotoneAndTerminal(t *testing.T) {
	ds := Dataset{
		{Merchant: "A", Open: 5}, {Merchant: "B", Open: 30},
		{Merchant: "C", Open: 10}, {Merchant: "A", Open: 25},
	}
	points := Pareto(ds)
	prev := 0.0
	for _, p := range points {
		require.GreaterOrEqual(t, p.CumulativeSharePct, prev)
		prev = p.CumulativeSharePct
	}
	require.InDelta(t, 100.0, points[len(points)-1].CumulativeSharePct, 0.01)
}

func TestPareto_ZeroTotalIsDefined(t *testing.T) {
	ds := Dataset{{Merchant: "A", Open: 0}, {Merchant: "B", Open: 0}}
	points := Pareto(ds)
	require.Len(t, points, 2)
	for _, p := range points {
		require.Zero(t, p.CumulativeSharePct)
	}
}

func TestPareto_Empty(t *testing.T) {
	require.Empty(t, Pareto(nil))
}

func TestHistogram_CoverageAndBounds(t *testing.T) {
	ds := Dataset{
		{Ratio: 0.02}, {Ratio: 0.08}, {Ratio: 0.08},
		{Ratio: 0.21}, {Ratio: -0.01}, {Ratio: 0.37},
	}
	bins := Histogram(ds, 0.05)
	require.NotEmpty(t, bins)

	total := 0
	for i, b := range bins {
		total += b.Count
		if i > 0 {
			require.InDelta(t, bins[i-1].UpperBound, b.LowerBound, 1e-9)
		}
	}
	require.Equal(t, len(ds), total)

	// The binned range strictly contains every ratio.
	require.Less(t, bins[0].LowerBound, -0.01)
	require.Greater(t, bins[len(bins)-1].UpperBound, 0.37)
}

func TestHistogram_CeilingValueFallsInLastBin(t *testing.T) {
	// All ratios equal: min == max, and the single value must land inside.
	ds := Dataset{{Ratio: 0.10}, {Ratio: 0.10}}
	bins := Histogram(ds, 0.05)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	require.Equal(t, 2, total)
}

func TestHistogram_Empty(t *testing.T) {
	require.Empty(t, Histogram(nil, 0.05))
}

func TestRevenueShare_Descending(t *testing.T) {
	ds := Dataset{
		{Agent: "A", Revenue: 10}, {Agent: "B", Revenue: 50}, {Agent: "A", Revenue: 15},
	}
	shares := RevenueShare(ds)
	require.Equal(t, []ShareEntry{{Category: "B", Value: 50}, {Category: "A", Value: 25}}, shares)
}

func TestTopMerchants_TruncatedAscending(t *testing.T) {
	ds := Dataset{
		{Merchant: "M1", Open: 100}, {Merchant: "M2", Open: 300},
		{Merchant: "M3", Open: 200}, {Merchant: "M4", Open: 50},
	}
	top := TopMerchants(ds, 2)
	// Top two by value, reversed to ascending for bar rendering.
	require.Equal(t, []TopNEntry{{Category: "M3", Value: 200}, {Category: "M2", Value: 300}}, top)

	require.Len(t, TopMerchants(ds, 10), 4)
}
