package registry

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/merchstats/internal/metrics"
	"github.com/vinodismyname/merchstats/internal/runtime"
	"github.com/vinodismyname/merchstats/internal/store"
	"github.com/vinodismyname/merchstats/pkg/mcperr"
	"github.com/vinodismyname/merchstats/pkg/validation"
)

// AnalyticsInput carries the dataset reference and the shared filter
// parameters accepted by every aggregate tool.
type AnalyticsInput struct {
	DatasetID     string   `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Agent         string   `json:"agent,omitempty" jsonschema_description:"Exact agent filter; empty or ALL disables"`
	Merchant      string   `json:"merchant,omitempty" jsonschema_description:"Exact merchant filter; empty or ALL disables"`
	ExcludeAgents string   `json:"exclude_agents,omitempty" jsonschema_description:"Comma/space separated substrings; rows whose agent contains any token are dropped"`
	Search        string   `json:"search,omitempty" jsonschema_description:"Case-insensitive substring over agent and merchant"`
	Months        []string `json:"months,omitempty" validate:"omitempty,dive,monthtok" jsonschema_description:"Month tokens (YYYY-MM or 'unspecified'); empty selects all"`
}

func (in AnalyticsInput) criteria() metrics.Criteria {
	return criteriaFrom(in.Agent, in.Merchant, in.ExcludeAgents, in.Search, in.Months)
}

// ConcentrationCurveOutput carries the Pareto curve over merchant open amounts.
type ConcentrationCurveOutput struct {
	DatasetID string                `json:"dataset_id"`
	Points    []metrics.ParetoPoint `json:"points" jsonschema_description:"Merchants sorted by descending open amount with cumulative share percent"`
	Rows      int                   `json:"rows" jsonschema_description:"Rows aggregated after filtering"`
}

// RatioHistogramInput extends the shared filter with the bin width.
type RatioHistogramInput struct {
	AnalyticsInput
	Step float64 `json:"step,omitempty" validate:"omitempty,gt=0,lte=1" jsonschema_description:"Bin width on the ratio axis (default from config, e.g. 0.05)"`
}

// RatioHistogramOutput carries fixed-width ratio bins.
type RatioHistogramOutput struct {
	DatasetID string                 `json:"dataset_id"`
	Step      float64                `json:"step"`
	Bins      []metrics.HistogramBin `json:"bins" jsonschema_description:"Contiguous bins covering [min-step, max+step]; counts sum to the row total"`
	Rows      int                    `json:"rows"`
}

// RevenueShareOutput carries per-agent revenue share entries.
type RevenueShareOutput struct {
	DatasetID string               `json:"dataset_id"`
	Entries   []metrics.ShareEntry `json:"entries" jsonschema_description:"Agents sorted by descending revenue with share percent"`
	Rows      int                  `json:"rows"`
}

// TopMerchantsInput extends the shared filter with the result size.
type TopMerchantsInput struct {
	AnalyticsInput
	TopN int `json:"top_n,omitempty" validate:"omitempty,min=1,max=100" jsonschema_description:"Number of merchants to keep (default from config)"`
}

// TopMerchantsOutput carries the top merchants by open amount.
type TopMerchantsOutput struct {
	DatasetID string              `json:"dataset_id"`
	TopN      int                 `json:"topN"`
	Entries   []metrics.TopNEntry `json:"entries" jsonschema_description:"Top merchants in ascending value order (horizontal bar-chart order)"`
	Rows      int                 `json:"rows"`
}

// ComparePeriodsInput selects two months and a join identity. Exclusion
// tokens apply before the join; the interactive display filters deliberately
// do not.
type ComparePeriodsInput struct {
	DatasetID     string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	PeriodA       string `json:"period_a" validate:"required,monthtok" jsonschema_description:"Baseline month (YYYY-MM or 'unspecified')"`
	PeriodB       string `json:"period_b" validate:"required,monthtok" jsonschema_description:"Comparison month (YYYY-MM or 'unspecified')"`
	JoinKey       string `json:"join_key,omitempty" validate:"omitempty,joinkey" jsonschema_description:"Join identity: agent_merchant (default) or merchant"`
	ExcludeAgents string `json:"exclude_agents,omitempty" jsonschema_description:"Comma/space separated substrings; rows whose agent contains any token are dropped before joining"`
}

// ComparePeriodsOutput carries the outer-join comparison rows.
type ComparePeriodsOutput struct {
	DatasetID string                  `json:"dataset_id"`
	PeriodA   string                  `json:"period_a"`
	PeriodB   string                  `json:"period_b"`
	JoinKey   string                  `json:"join_key"`
	Rows      []metrics.ComparisonRow `json:"rows" jsonschema_description:"One row per key in either period, sorted by descending revenue delta"`
	Count     int                     `json:"count"`
}

// RegisterAnalyticsTools wires the aggregate and comparison tools.
func RegisterAnalyticsTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, st *store.Store) {
	snapshot := func(in AnalyticsInput) (metrics.Dataset, *mcp.CallToolResult) {
		ds, _, err := st.Snapshot(in.DatasetID)
		if err != nil {
			return nil, datasetError(err)
		}
		return metrics.Filter(ds, in.criteria()), nil
	}

	// concentration_curve
	ccTool := mcp.NewTool(
		"concentration_curve",
		mcp.WithDescription("Compute the Pareto concentration curve of merchant open amounts: merchants sorted by descending open with cumulative share percent. The terminal point reaches 100 even when all values are zero. Filters compose by AND as in preview_rows. Errors include INVALID_DATASET and ANALYSIS_FAILED."),
		mcp.WithInputSchema[AnalyticsInput](),
		mcp.WithOutputSchema[ConcentrationCurveOutput](),
	)
	s.AddTool(ccTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in AnalyticsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		filtered, errRes := snapshot(in)
		if errRes != nil {
			return errRes, nil
		}
		out := ConcentrationCurveOutput{DatasetID: in.DatasetID, Points: metrics.Pareto(filtered), Rows: len(filtered)}
		summary := fmt.Sprintf("points=%d rows=%d", len(out.Points), out.Rows)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(ccTool)

	// ratio_histogram
	rhTool := mcp.NewTool(
		"ratio_histogram",
		mcp.WithDescription("Bucket row ratios into fixed-width bins. Bounds extend one step beyond the observed min and max so every value, including the exact ceiling, lands in a bin; counts always sum to the filtered row total. Errors include INVALID_DATASET and ANALYSIS_FAILED."),
		mcp.WithInputSchema[RatioHistogramInput](),
		mcp.WithOutputSchema[RatioHistogramOutput](),
	)
	s.AddTool(rhTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in RatioHistogramInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		filtered, errRes := snapshot(in.AnalyticsInput)
		if errRes != nil {
			return errRes, nil
		}
		step := in.Step
		if step <= 0 {
			step = limits.HistogramStep
		}
		out := RatioHistogramOutput{DatasetID: in.DatasetID, Step: step, Bins: metrics.Histogram(filtered, step), Rows: len(filtered)}
		summary := fmt.Sprintf("bins=%d step=%.3f rows=%d", len(out.Bins), step, out.Rows)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(rhTool)

	// revenue_share
	rsTool := mcp.NewTool(
		"revenue_share",
		mcp.WithDescription("Compute each agent's share of total revenue over the filtered rows, sorted descending. Errors include INVALID_DATASET and ANALYSIS_FAILED."),
		mcp.WithInputSchema[AnalyticsInput](),
		mcp.WithOutputSchema[RevenueShareOutput](),
	)
	s.AddTool(rsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in AnalyticsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		filtered, errRes := snapshot(in)
		if errRes != nil {
			return errRes, nil
		}
		out := RevenueShareOutput{DatasetID: in.DatasetID, Entries: metrics.RevenueShare(filtered), Rows: len(filtered)}
		summary := fmt.Sprintf("agents=%d rows=%d", len(out.Entries), out.Rows)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(rsTool)

	// top_merchants
	tmTool := mcp.NewTool(
		"top_merchants",
		mcp.WithDescription("Return the top N merchants by summed open amount. Entries come back in ascending value order, ready for a horizontal bar chart reading bottom-up. Errors include INVALID_DATASET and ANALYSIS_FAILED."),
		mcp.WithInputSchema[TopMerchantsInput](),
		mcp.WithOutputSchema[TopMerchantsOutput](),
	)
	s.AddTool(tmTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in TopMerchantsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		filtered, errRes := snapshot(in.AnalyticsInput)
		if errRes != nil {
			return errRes, nil
		}
		n := in.TopN
		if n <= 0 {
			n = limits.TopN
		}
		out := TopMerchantsOutput{DatasetID: in.DatasetID, TopN: n, Entries: metrics.TopMerchants(filtered, n), Rows: len(filtered)}
		summary := fmt.Sprintf("topN=%d entries=%d rows=%d", n, len(out.Entries), out.Rows)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(tmTool)

	// compare_periods
	cpTool := mcp.NewTool(
		"compare_periods",
		mcp.WithDescription("Outer-join two month partitions on agent+merchant (or merchant alone) and emit signed B-minus-A deltas for open, revenue, and ratio, sorted by descending revenue delta. A key missing from one period contributes zeros on that side, so churned and new entries both appear. Exclusion tokens apply before the join; the other display filters do not. Call list_months first to pick valid tokens. Errors include INVALID_DATASET and COMPARE_FAILED."),
		mcp.WithInputSchema[ComparePeriodsInput](),
		mcp.WithOutputSchema[ComparePeriodsOutput](),
	)
	s.AddTool(cpTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in ComparePeriodsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		ds, _, err := st.Snapshot(in.DatasetID)
		if err != nil {
			return datasetError(err), nil
		}
		working := metrics.Filter(ds, criteriaFrom("", "", in.ExcludeAgents, "", nil))

		key := metrics.JoinAgentMerchant
		joinName := "agent_merchant"
		if in.JoinKey == "merchant" {
			key = metrics.JoinMerchantOnly
			joinName = "merchant"
		}
		periodA := metrics.RepadMonth(in.PeriodA)
		periodB := metrics.RepadMonth(in.PeriodB)
		rows := metrics.ComparePeriods(working, periodA, periodB, key)

		out := ComparePeriodsOutput{
			DatasetID: in.DatasetID,
			PeriodA:   periodA,
			PeriodB:   periodB,
			JoinKey:   joinName,
			Rows:      rows,
			Count:     len(rows),
		}
		if payloadTooLarge(out, limits.MaxPayloadBytes) {
			return mcperr.Wrapf(mcperr.PayloadTooLarge, "comparison of %d rows exceeds %d bytes; add exclusions or compare a narrower dataset", len(rows), limits.MaxPayloadBytes), nil
		}
		summary := fmt.Sprintf("periods=[%s→%s] join=%s rows=%d", periodA, periodB, joinName, len(rows))
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(cpTool)
}
