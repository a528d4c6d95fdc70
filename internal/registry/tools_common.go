package registry

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vinodismyname/merchstats/internal/metrics"
	"github.com/vinodismyname/merchstats/internal/store"
	"github.com/vinodismyname/merchstats/pkg/mcperr"
	"github.com/vinodismyname/merchstats/pkg/pagination"
)

// PageMeta captures paging/truncation metadata.
type PageMeta struct {
	Total      int    `json:"total" jsonschema_description:"Total rows matching the filter"`
	Returned   int    `json:"returned" jsonschema_description:"Rows in this page"`
	Truncated  bool   `json:"truncated" jsonschema_description:"True when more rows remain"`
	NextCursor string `json:"nextCursor,omitempty" jsonschema_description:"Opaque cursor for the next page"`
}

// criteriaFrom assembles filter criteria from the common tool parameters.
// Months are matched after canonical re-padding so "2025-6" selects "2025-06".
func criteriaFrom(agent, merchant, excludeAgents, search string, months []string) metrics.Criteria {
	c := metrics.Criteria{
		AgentEquals:    strings.TrimSpace(agent),
		MerchantEquals: strings.TrimSpace(merchant),
		SearchText:     search,
	}
	if tok := strings.TrimSpace(excludeAgents); tok != "" {
		c.ExcludeAgentTokens = metrics.SplitTokens(tok)
	}
	if len(months) > 0 {
		set := make(map[string]struct{}, len(months))
		for _, m := range months {
			set[metrics.RepadMonth(strings.TrimSpace(m))] = struct{}{}
		}
		c.MonthsIn = set
	}
	return c
}

// filterHashFor binds a cursor to the filter parameters that produced it.
func filterHashFor(agent, merchant, excludeAgents, search string, months []string) string {
	parts := []string{agent, merchant, excludeAgents, search}
	parts = append(parts, months...)
	return pagination.FilterHash(parts...)
}

// payloadTooLarge reports whether the JSON encoding of v exceeds the byte
// budget. Marshal failures count as too large; the caller falls back to an
// error result either way.
func payloadTooLarge(v any, maxBytes int) bool {
	if maxBytes <= 0 {
		return false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return true
	}
	return len(b) > maxBytes
}

// datasetError maps store lookup failures onto canonical tool errors.
func datasetError(err error) *mcp.CallToolResult {
	if errors.Is(err, store.ErrDatasetNotFound) {
		return mcperr.New(mcperr.InvalidDataset, "")
	}
	return mcperr.Wrapf(mcperr.AnalysisFailed, "%v", err)
}
