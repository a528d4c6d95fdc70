package metrics

import "sort"

// JoinKey selects the identity used to match rows across two periods.
type JoinKey int

const (
	// JoinAgentMerchant joins on the agent+merchant composite.
	JoinAgentMerchant JoinKey = iota
	// JoinMerchantOnly joins on merchant alone. Distinct agents sharing a
	// merchant name are silently merged under this key.
	JoinMerchantOnly
)

// ComparePeriods reconciles two month partitions of the dataset via an outer
// join on the selected key and emits signed B-minus-A deltas, sorted
// descending by revenue delta. A period absent for a key contributes zeros.
// When either period token is empty (no period selected) the result is an
// empty list, never an error.
//
// Callers compare over the working dataset minus exclusions; the interactive
// display filter is deliberately not applied here.
func ComparePeriods(ds Dataset, periodA, periodB string, key JoinKey) []ComparisonRow {
	if periodA == "" || periodB == "" {
		return nil
	}

	sideA := partition(ds, periodA, key)
	sideB := partition(ds, periodB, key)

	keys := make(map[string]struct{}, len(sideA)+len(sideB))
	for k := range sideA {
		keys[k] = struct{}{}
	}
	for k := range sideB {
		keys[k] = struct{}{}
	}

	out := make([]ComparisonRow, 0, len(keys))
	for k := range keys {
		a, okA := sideA[k]
		b, okB := sideB[k]
		cr := ComparisonRow{
			OpenA:    a.Open,
			OpenB:    b.Open,
			RevenueA: a.Revenue,
			RevenueB: b.Revenue,
			RatioA:   a.Ratio,
			RatioB:   b.Ratio,
		}
		// Identity labels come from whichever side is present.
		switch {
		case okA:
			cr.Agent, cr.Merchant = a.Agent, a.Merchant
		case okB:
			cr.Agent, cr.Merchant = b.Agent, b.Merchant
		}
		cr.DeltaOpen = cr.OpenB - cr.OpenA
		cr.DeltaRevenue = cr.RevenueB - cr.RevenueA
		cr.DeltaRatio = cr.RatioB - cr.RatioA
		out = append(out, cr)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeltaRevenue > out[j].DeltaRevenue
	})
	return out
}

// partition maps join key to row for one month. A later duplicate of the same
// key overwrites the earlier one, matching the source behavior.
func partition(ds Dataset, month string, key JoinKey) map[string]Row {
	out := make(map[string]Row, 16)
	for _, row := range ds {
		if row.Month != month {
			continue
		}
		out[joinKeyOf(row, key)] = row
	}
	return out
}

func joinKeyOf(row Row, key JoinKey) string {
	if key == JoinMerchantOnly {
		return row.Merchant
	}
	return row.Agent + "\x00" + row.Merchant
}
