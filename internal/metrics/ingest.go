package metrics

import (
	"fmt"
	"strings"
)

// RawRecord is one heterogeneous input record: arbitrary string keys mapped
// to scalar values as produced by the transport adapters (workbook, CSV, or
// remote JSON readers).
type RawRecord = map[string]any

// Accepted alias keys per canonical field, checked in priority order with
// exact (case- and language-sensitive) matching. This is a static table by
// design; no fuzzy or reflective lookup.
var (
	agentAliases    = []string{"agent", "agent_name", "agentName", "代理", "代理商", "业务员"}
	merchantAliases = []string{"merchant", "merchant_name", "merchantName", "商户", "商户名称", "商户名"}
	openAliases     = []string{"open", "open_amount", "openAmount", "敞口", "敞口金额", "在营金额"}
	revenueAliases  = []string{"revenue", "revenue_amount", "revenueAmount", "营收", "营收金额", "收入"}
	ratioAliases    = []string{"ratio", "rate", "比例", "费率", "收益率"}
	monthAliases    = []string{"month", "date", "月份", "日期", "数据月份"}
)

// extraAliases map pass-through display fields onto stable extra keys.
var extraAliases = map[string][]string{
	"machines": {"machines", "machine_count", "机器数", "台数"},
	"remarks":  {"remarks", "备注", "说明"},
	"flags":    {"flags", "标记"},
	"hours":    {"hours", "operating_hours", "营业时间"},
}

// ToRow maps a raw record into the canonical Row. It is total: unresolvable
// amounts coerce to 0, the ratio falls back to revenue/open, and the month
// falls back to the batch-level default. Rows with an empty agent or merchant
// are excluded by the caller, not here.
func ToRow(raw RawRecord, batchMonth string) Row {
	row := Row{
		Agent:    firstString(raw, agentAliases),
		Merchant: firstString(raw, merchantAliases),
		Open:     Coerce(firstValue(raw, openAliases)),
		Revenue:  Coerce(firstValue(raw, revenueAliases)),
	}
	row.Ratio = resolveRatio(raw, row.Open, row.Revenue)
	row.Month = resolveMonth(raw, batchMonth)

	for key, aliases := range extraAliases {
		if v, ok := lookup(raw, aliases); ok {
			if row.Extra == nil {
				row.Extra = make(map[string]any, len(extraAliases))
			}
			row.Extra[key] = scalarize(v)
		}
	}
	return row
}

// BuildRows converts a batch of raw records, dropping rows missing either
// identity field. Drops are silent; callers wanting visibility must count at
// the ingestion boundary.
func BuildRows(raws []RawRecord, batchMonth string) []Row {
	rows := make([]Row, 0, len(raws))
	for _, raw := range raws {
		row := ToRow(raw, batchMonth)
		if row.Agent == "" || row.Merchant == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// resolveRatio prefers an explicit ratio-bearing field (percent-aware via
// Coerce), then revenue/open, then 0.
func resolveRatio(raw RawRecord, open, revenue float64) float64 {
	if v, ok := lookup(raw, ratioAliases); ok {
		if s, isStr := v.(string); !isStr || strings.TrimSpace(s) != "" {
			return Coerce(v)
		}
	}
	if open > 0 {
		return revenue / open
	}
	return 0
}

// resolveMonth normalizes the first matching month alias, then the batch
// fallback. An empty result is resolved to the sentinel by Merge.
func resolveMonth(raw RawRecord, batchMonth string) string {
	for _, key := range monthAliases {
		if v, ok := raw[key]; ok {
			if m, matched := NormalizeMonth(stringify(v)); matched {
				return m
			}
		}
	}
	if m, matched := NormalizeMonth(batchMonth); matched {
		return m
	}
	return ""
}

func lookup(raw RawRecord, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstValue(raw RawRecord, aliases []string) any {
	v, _ := lookup(raw, aliases)
	return v
}

func firstString(raw RawRecord, aliases []string) string {
	v, ok := lookup(raw, aliases)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// scalarize narrows extra values to the closed string/float64/bool set.
func scalarize(v any) any {
	switch x := v.(type) {
	case string, float64, bool:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return fmt.Sprint(x)
	}
}
