package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToRow_SpecimenBatch(t *testing.T) {
	raws := []RawRecord{
		{"agent": "X", "merchant": "M1", "open": "1,200,000", "revenue": "300000"},
		{"agent": "X", "merchant": "M2", "open": "900000", "revenue": "210000"},
	}
	rows := BuildRows(raws, "2025-07")
	require.Len(t, rows, 2)

	require.Equal(t, Row{Month: "2025-07", Agent: "X", Merchant: "M1", Open: 1200000, Revenue: 300000, Ratio: 0.25}, rows[0])
	require.Equal(t, "2025-07", rows[1].Month)
	require.InDelta(t, 210000.0/900000.0, rows[1].Ratio, 1e-9)
}

func TestToRow_AliasKeys(t *testing.T) {
	row := ToRow(RawRecord{
		"代理商":  "华东一部",
		"商户名称": "便利店A",
		"敞口金额": "1.2万",
		"营收":   "3000",
	}, "")
	require.Equal(t, "华东一部", row.Agent)
	require.Equal(t, "便利店A", row.Merchant)
	require.Equal(t, 12000.0, row.Open)
	require.Equal(t, 3000.0, row.Revenue)
	require.InDelta(t, 0.25, row.Ratio, 1e-9)
}

func TestToRow_ExplicitRatioWins(t *testing.T) {
	// Explicit percent ratio diverges from revenue/open; the explicit value
	// is stored as supplied.
	row := ToRow(RawRecord{"agent": "A", "merchant": "M", "open": "1000", "revenue": "100", "ratio": "30%"}, "")
	require.InDelta(t, 0.30, row.Ratio, 1e-9)

	// Plain-number explicit ratio.
	row = ToRow(RawRecord{"agent": "A", "merchant": "M", "open": "1000", "revenue": "100", "ratio": 0.4}, "")
	require.InDelta(t, 0.40, row.Ratio, 1e-9)

	// Empty explicit field falls through to revenue/open.
	row = ToRow(RawRecord{"agent": "A", "merchant": "M", "open": "1000", "revenue": "100", "ratio": "  "}, "")
	require.InDelta(t, 0.10, row.Ratio, 1e-9)
}

func TestToRow_RatioFallbackLaw(t *testing.T) {
	row := ToRow(RawRecord{"agent": "A", "merchant": "M", "open": 800.0, "revenue": 120.0}, "")
	require.InDelta(t, 120.0/800.0, row.Ratio, 1e-9)

	// Zero open amount: ratio defaults to 0, never a division error.
	row = ToRow(RawRecord{"agent": "A", "merchant": "M", "open": 0, "revenue": 120.0}, "")
	require.Zero(t, row.Ratio)
}

func TestToRow_MonthPrecedence(t *testing.T) {
	// Row-level month wins over the batch fallback.
	row := ToRow(RawRecord{"agent": "A", "merchant": "M", "月份": "2025年6月"}, "2025-07")
	require.Equal(t, "2025-06", row.Month)

	// Unparsable row month falls back to the batch month.
	row = ToRow(RawRecord{"agent": "A", "merchant": "M", "month": "soon"}, "2025-07")
	require.Equal(t, "2025-07", row.Month)

	// Neither resolves: left empty for the merger to mark unspecified.
	row = ToRow(RawRecord{"agent": "A", "merchant": "M"}, "")
	require.Empty(t, row.Month)
}

func TestBuildRows_DropsMissingIdentity(t *testing.T) {
	raws := []RawRecord{
		{"agent": "A", "merchant": "M"},
		{"agent": "  ", "merchant": "M"},
		{"agent": "A"},
		{"merchant": "M"},
	}
	rows := BuildRows(raws, "2025-07")
	require.Len(t, rows, 1)
	require.Equal(t, "A", rows[0].Agent)
}

func TestToRow_ExtrasPreserved(t *testing.T) {
	row := ToRow(RawRecord{"agent": "A", "merchant": "M", "机器数": 3, "remarks": "seasonal"}, "")
	require.Equal(t, 3.0, row.Extra["machines"])
	require.Equal(t, "seasonal", row.Extra["remarks"])
}
