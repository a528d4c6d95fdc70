package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seedRows(months ...string) []Row {
	rows := make([]Row, len(months))
	for i, m := range months {
		rows[i] = Row{Month: m, Agent: "A", Merchant: "M", Open: 100, Revenue: 10, Ratio: 0.1}
	}
	return rows
}

func TestMerge_AppendAndReplaceLengths(t *testing.T) {
	existing := Dataset(seedRows("2025-06", "2025-06"))
	incoming := seedRows("2025-07", "2025-07", "2025-07")

	appended := Merge(existing, incoming, Append, "")
	require.Len(t, appended, len(existing)+len(incoming))
	// Existing order precedes incoming order.
	require.Equal(t, "2025-06", appended[0].Month)
	require.Equal(t, "2025-07", appended[len(appended)-1].Month)

	replaced := Merge(existing, incoming, Replace, "")
	require.Len(t, replaced, len(incoming))
}

func TestMerge_BackfillsBatchMonth(t *testing.T) {
	incoming := []Row{
		{Agent: "A", Merchant: "M1"},
		{Month: "2025-06", Agent: "A", Merchant: "M2"},
	}
	out := Merge(nil, incoming, Append, "2025年7月")
	require.Equal(t, "2025-07", out[0].Month)
	require.Equal(t, "2025-06", out[1].Month)
}

func TestMerge_SentinelWhenNoFallback(t *testing.T) {
	out := Merge(nil, []Row{{Agent: "A", Merchant: "M"}}, Append, "")
	require.Equal(t, MonthUnspecified, out[0].Month)
}

func TestMerge_CopyOnWrite(t *testing.T) {
	existing := Dataset(seedRows("2025-06"))
	incoming := []Row{{Agent: "A", Merchant: "M"}}

	out := Merge(existing, incoming, Append, "2025-07")
	require.Equal(t, "2025-06", existing[0].Month)
	// The incoming slice is not mutated by the month backfill.
	require.Empty(t, incoming[0].Month)
	require.Equal(t, "2025-07", out[1].Month)
}

func TestMonths_SortedDistinct(t *testing.T) {
	ds := Dataset(seedRows("2025-07", "2025-06", "2025-07", MonthUnspecified))
	require.Equal(t, []string{"2025-06", "2025-07", MonthUnspecified}, ds.Months())
}
