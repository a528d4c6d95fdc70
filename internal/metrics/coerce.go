package metrics

import (
	"strconv"
	"strings"
)

// UnitSuffix maps a trailing unit token to a multiplier applied to the
// numeric portion preceding it.
type UnitSuffix struct {
	Suffix string
	Factor float64
}

// DefaultUnitSuffixes covers the magnitude tokens seen in source feeds.
// Longer suffixes are listed before their substrings so 百万 wins over 万.
var DefaultUnitSuffixes = []UnitSuffix{
	{Suffix: "百万", Factor: 1e6},
	{Suffix: "亿", Factor: 1e8},
	{Suffix: "万", Factor: 1e4},
}

// Coerce converts an arbitrary scalar into a number on a best-effort basis.
// Numeric inputs pass through; nil and empty strings become 0; strings are
// stripped of thousands separators, percent signs divide by 100, and trailing
// unit suffixes multiply by their factor. Unparsable input yields 0 — this
// function never fails.
func Coerce(v any) float64 {
	return CoerceWith(v, DefaultUnitSuffixes)
}

// CoerceWith is Coerce with a caller-supplied unit-suffix table.
func CoerceWith(v any, units []UnitSuffix) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return coerceString(x, units)
	default:
		return 0
	}
}

// SortValue is the secondary sortable-value accessor used when ordering
// display cells; it shares Coerce's semantics.
func SortValue(v any) float64 {
	return Coerce(v)
}

func coerceString(s string, units []UnitSuffix) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Thousands separators, half- and full-width.
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "，", "")

	if t, ok := trimPercent(s); ok {
		return parseNumericPortion(t) / 100
	}
	for _, u := range units {
		if t, ok := strings.CutSuffix(s, u.Suffix); ok {
			return parseNumericPortion(t) * u.Factor
		}
	}
	return parseNumericPortion(s)
}

func trimPercent(s string) (string, bool) {
	if t, ok := strings.CutSuffix(s, "%"); ok {
		return t, true
	}
	if t, ok := strings.CutSuffix(s, "％"); ok {
		return t, true
	}
	return s, false
}

// parseNumericPortion keeps digits, sign, and decimal point, then parses.
func parseNumericPortion(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
