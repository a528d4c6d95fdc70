package metrics

import "strings"

// FilterAll is the sentinel meaning "no categorical filter".
const FilterAll = "ALL"

// Criteria narrows the working dataset. All set criteria compose by logical
// AND; application order does not affect the result.
type Criteria struct {
	// AgentEquals / MerchantEquals filter by exact match; empty or FilterAll
	// disables the respective filter.
	AgentEquals    string
	MerchantEquals string

	// ExcludeAgentTokens drops a row when its agent contains any token as a
	// case-sensitive substring. An empty list excludes nothing.
	ExcludeAgentTokens []string

	// SearchText keeps rows whose agent or merchant contains the text,
	// case-insensitively.
	SearchText string

	// MonthsIn keeps rows whose month is a member. Nil, or a set covering
	// every month present in the dataset, is a no-op ("all selected").
	MonthsIn map[string]struct{}
}

// SplitTokens derives exclusion tokens from free-text input, splitting on
// commas and whitespace and discarding empties.
func SplitTokens(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// Filter returns the rows of ds matching c. It is a pure projection: ds is
// never mutated and rows are shared, not copied.
func Filter(ds Dataset, c Criteria) Dataset {
	monthFilter := c.monthFilterActive(ds)
	search := strings.ToLower(strings.TrimSpace(c.SearchText))

	out := make(Dataset, 0, len(ds))
	for _, row := range ds {
		if c.AgentEquals != "" && c.AgentEquals != FilterAll && row.Agent != c.AgentEquals {
			continue
		}
		if c.MerchantEquals != "" && c.MerchantEquals != FilterAll && row.Merchant != c.MerchantEquals {
			continue
		}
		if containsAnyToken(row.Agent, c.ExcludeAgentTokens) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.Agent), search) &&
			!strings.Contains(strings.ToLower(row.Merchant), search) {
			continue
		}
		if monthFilter {
			if _, ok := c.MonthsIn[row.Month]; !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

// monthFilterActive reports whether the month criterion narrows anything: a
// nil set or one covering every known month is treated as "all selected".
func (c Criteria) monthFilterActive(ds Dataset) bool {
	if c.MonthsIn == nil {
		return false
	}
	for _, m := range ds.Months() {
		if _, ok := c.MonthsIn[m]; !ok {
			return true
		}
	}
	return false
}

func containsAnyToken(s string, tokens []string) bool {
	for _, tok := range tokens {
		if tok != "" && strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
