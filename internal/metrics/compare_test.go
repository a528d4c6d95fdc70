package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compareFixture() Dataset {
	return Dataset{
		{Month: "2025-06", Agent: "A", Merchant: "M1", Open: 100, Revenue: 20, Ratio: 0.20},
		{Month: "2025-06", Agent: "A", Merchant: "M2", Open: 200, Revenue: 30, Ratio: 0.15},
		{Month: "2025-07", Agent: "A", Merchant: "M1", Open: 150, Revenue: 45, Ratio: 0.30},
		{Month: "2025-07", Agent: "B", Merchant: "M3", Open: 80, Revenue: 8, Ratio: 0.10},
	}
}

func TestComparePeriods_OuterJoinCompleteness(t *testing.T) {
	rows := ComparePeriods(compareFixture(), "2025-06", "2025-07", JoinAgentMerchant)
	// Keys: A/M1 (both), A/M2 (A only), B/M3 (B only).
	require.Len(t, rows, 3)

	byMerchant := map[string]ComparisonRow{}
	for _, r := range rows {
		byMerchant[r.Merchant] = r
		require.InDelta(t, r.RevenueB-r.RevenueA, r.DeltaRevenue, 1e-9)
		require.InDelta(t, r.OpenB-r.OpenA, r.DeltaOpen, 1e-9)
		require.InDelta(t, r.RatioB-r.RatioA, r.DeltaRatio, 1e-9)
	}

	m1 := byMerchant["M1"]
	require.Equal(t, 25.0, m1.DeltaRevenue)

	// Missing side contributes zeros, identity comes from the present side.
	m2 := byMerchant["M2"]
	require.Equal(t, "A", m2.Agent)
	require.Zero(t, m2.OpenB)
	require.Equal(t, -30.0, m2.DeltaRevenue)

	m3 := byMerchant["M3"]
	require.Equal(t, "B", m3.Agent)
	require.Zero(t, m3.RevenueA)
	require.Equal(t, 8.0, m3.DeltaRevenue)
}

func TestComparePeriods_SortedByDeltaRevenueDesc(t *testing.T) {
	rows := ComparePeriods(compareFixture(), "2025-06", "2025-07", JoinAgentMerchant)
	for i := 1; i < len(rows); i++ {
		require.GreaterOrEqual(t, rows[i-1].DeltaRevenue, rows[i].DeltaRevenue)
	}
}

func TestComparePeriods_MerchantOnlyJoinMergesAgents(t *testing.T) {
	ds := Dataset{
		{Month: "2025-06", Agent: "A", Merchant: "Shared", Open: 10, Revenue: 1},
		{Month: "2025-07", Agent: "B", Merchant: "Shared", Open: 20, Revenue: 2},
	}
	rows := ComparePeriods(ds, "2025-06", "2025-07", JoinMerchantOnly)
	require.Len(t, rows, 1)
	require.Equal(t, 10.0, rows[0].DeltaOpen)
}

func TestComparePeriods_MissingPeriodStillJoins(t *testing.T) {
	// Period B has no rows at all: every row gets zero B-side values and a
	// negative revenue delta.
	rows := ComparePeriods(compareFixture(), "2025-06", "2025-08", JoinAgentMerchant)
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.Zero(t, r.OpenB)
		require.Zero(t, r.RevenueB)
		require.Negative(t, r.DeltaRevenue)
	}
}

func TestComparePeriods_UnselectedPeriod(t *testing.T) {
	require.Empty(t, ComparePeriods(compareFixture(), "", "2025-07", JoinAgentMerchant))
	require.Empty(t, ComparePeriods(compareFixture(), "2025-06", "", JoinAgentMerchant))
}
