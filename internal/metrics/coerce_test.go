package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerce_Numbers(t *testing.T) {
	require.Equal(t, 12.5, Coerce(12.5))
	require.Equal(t, 7.0, Coerce(7))
	require.Equal(t, 7.0, Coerce(int64(7)))
	require.Equal(t, 0.0, Coerce(nil))
}

func TestCoerce_Strings(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1,200,000", 1200000},
		{"  300000 ", 300000},
		{"", 0},
		{"25%", 0.25},
		{"2.5％", 0.025},
		{"1.2万", 12000},
		{"3百万", 3e6},
		{"1.5亿", 1.5e8},
		{"¥1,234.56", 1234.56},
		{"-42", -42},
		{"n/a", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Coerce(tc.in), "input %q", tc.in)
	}
}

func TestCoerceWith_CustomUnits(t *testing.T) {
	units := []UnitSuffix{{Suffix: "k", Factor: 1e3}}
	require.Equal(t, 2500.0, CoerceWith("2.5k", units))
	// Default table no longer applies.
	require.Equal(t, 1.0, CoerceWith("1万", units))
}

func TestSortValue_SharesCoercion(t *testing.T) {
	require.Equal(t, 1200000.0, SortValue("1,200,000"))
	require.Equal(t, 0.0, SortValue("备注"))
}
