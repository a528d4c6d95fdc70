package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/merchstats/internal/metrics"
	"github.com/vinodismyname/merchstats/internal/runtime"
	"github.com/vinodismyname/merchstats/internal/store"
	"github.com/vinodismyname/merchstats/pkg/mcperr"
	"github.com/vinodismyname/merchstats/pkg/pagination"
	"github.com/vinodismyname/merchstats/pkg/validation"
)

// --- Input / Output Schemas (typed for discovery) ---

// CreateDatasetOutput documents the response fields for create_dataset.
type CreateDatasetOutput struct {
	DatasetID       string `json:"dataset_id" jsonschema_description:"Server-assigned dataset handle ID"`
	MaxRowsPerBatch int    `json:"maxRowsPerBatch" jsonschema_description:"Effective per-batch row limit"`
	PreviewRowLimit int    `json:"previewRowLimit" jsonschema_description:"Default row limit for previews"`
}

// IngestRecordsInput defines parameters for ingesting a batch of records.
type IngestRecordsInput struct {
	DatasetID  string              `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Records    []metrics.RawRecord `json:"records" validate:"required,min=1" jsonschema_description:"Header-keyed records; field names may use English or Chinese aliases"`
	Mode       string              `json:"mode,omitempty" validate:"omitempty,oneof=append replace" jsonschema_description:"Merge mode: append (default) or replace"`
	BatchMonth string              `json:"batch_month,omitempty" jsonschema_description:"Fallback month applied to records without their own month field; free-form (e.g. 2025-06, 2025年6月)"`
}

// IngestRecordsOutput summarizes an ingestion batch.
type IngestRecordsOutput struct {
	DatasetID string   `json:"dataset_id"`
	Accepted  int      `json:"accepted" jsonschema_description:"Records converted into rows"`
	Dropped   int      `json:"dropped" jsonschema_description:"Records dropped for missing agent and merchant identity"`
	TotalRows int      `json:"totalRows" jsonschema_description:"Dataset row count after the merge"`
	Version   int64    `json:"version" jsonschema_description:"Dataset version after the merge"`
	Months    []string `json:"months" jsonschema_description:"Distinct months now present, sorted"`
}

// ListDatasetsOutput enumerates open dataset handles.
type ListDatasetsOutput struct {
	Datasets []store.Info `json:"datasets"`
	Count    int          `json:"count"`
}

// CloseDatasetInput defines parameters for closing a dataset handle.
type CloseDatasetInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID to close"`
}

// ListMonthsInput defines parameters for month discovery.
type ListMonthsInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
}

// ListMonthsOutput lists the distinct months in a dataset.
type ListMonthsOutput struct {
	DatasetID string   `json:"dataset_id"`
	Months    []string `json:"months" jsonschema_description:"Distinct months, sorted ascending; 'unspecified' sorts last"`
	Count     int      `json:"count"`
}

// PreviewRowsInput defines parameters for a paginated, filtered row preview.
type PreviewRowsInput struct {
	DatasetID     string   `json:"dataset_id,omitempty" validate:"required_without=Cursor" jsonschema_description:"Dataset handle ID (optional when cursor is supplied)"`
	Agent         string   `json:"agent,omitempty" jsonschema_description:"Exact agent filter; empty or ALL disables"`
	Merchant      string   `json:"merchant,omitempty" jsonschema_description:"Exact merchant filter; empty or ALL disables"`
	ExcludeAgents string   `json:"exclude_agents,omitempty" jsonschema_description:"Comma/space separated substrings; rows whose agent contains any token are dropped"`
	Search        string   `json:"search,omitempty" jsonschema_description:"Case-insensitive substring over agent and merchant"`
	Months        []string `json:"months,omitempty" validate:"omitempty,dive,monthtok" jsonschema_description:"Month tokens (YYYY-MM or 'unspecified'); empty selects all"`
	PageSize      int      `json:"page_size,omitempty" validate:"omitempty,min=1,max=500" jsonschema_description:"Rows per page (bounded)"`
	Cursor        string   `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
}

// PreviewRowsOutput documents preview metadata.
type PreviewRowsOutput struct {
	DatasetID string        `json:"dataset_id"`
	Rows      []metrics.Row `json:"rows"`
	Meta      PageMeta      `json:"meta"`
}

// RegisterDatasetTools wires the dataset lifecycle and preview tools.
func RegisterDatasetTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, st *store.Store) {
	// create_dataset
	createTool := mcp.NewTool(
		"create_dataset",
		mcp.WithDescription("Create an empty in-memory dataset and return its handle ID with effective limits. Handles expire after an idle TTL; capacity is bounded and errors include BUSY_RESOURCE."),
		mcp.WithOutputSchema[CreateDatasetOutput](),
	)
	s.AddTool(createTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := st.Create(ctx)
		if err != nil {
			return mcperr.Wrapf(mcperr.BusyResource, "dataset capacity reached (max=%d)", limits.MaxOpenDatasets), nil
		}
		out := CreateDatasetOutput{
			DatasetID:       id,
			MaxRowsPerBatch: limits.MaxRowsPerBatch,
			PreviewRowLimit: limits.PreviewRowLimit,
		}
		summary := fmt.Sprintf("dataset_id=%s", id)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	})
	reg.Register(createTool)

	// ingest_records
	ingestTool := mcp.NewTool(
		"ingest_records",
		mcp.WithDescription("Ingest a batch of merchant metric records into a dataset. Field names resolve through English and Chinese aliases (agent/代理商, merchant/商户名称, open/敞口金额, revenue/营收金额, ratio/费率, month/月份); numeric strings are coerced totally (unit suffixes 万/百万/亿, percent, thousands separators; unparseable values become 0). Records missing both agent and merchant are dropped, never errors. Mode 'replace' discards existing rows first. Errors include INVALID_DATASET and LIMIT_EXCEEDED."),
		mcp.WithInputSchema[IngestRecordsInput](),
		mcp.WithOutputSchema[IngestRecordsOutput](),
	)
	s.AddTool(ingestTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in IngestRecordsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		if limits.MaxRowsPerBatch > 0 && len(in.Records) > limits.MaxRowsPerBatch {
			return mcperr.Wrapf(mcperr.LimitExceeded, "batch has %d records; max is %d", len(in.Records), limits.MaxRowsPerBatch), nil
		}
		mode := metrics.Append
		if in.Mode == "replace" {
			mode = metrics.Replace
		}
		rows := metrics.BuildRows(in.Records, in.BatchMonth)
		merged, version, err := st.Merge(in.DatasetID, rows, mode, in.BatchMonth)
		if err != nil {
			return datasetError(err), nil
		}
		out := IngestRecordsOutput{
			DatasetID: in.DatasetID,
			Accepted:  len(rows),
			Dropped:   len(in.Records) - len(rows),
			TotalRows: len(merged),
			Version:   version,
			Months:    merged.Months(),
		}
		summary := fmt.Sprintf("accepted=%d dropped=%d totalRows=%d version=%d", out.Accepted, out.Dropped, out.TotalRows, out.Version)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(ingestTool)

	// list_datasets
	listTool := mcp.NewTool(
		"list_datasets",
		mcp.WithDescription("List open dataset handles with row counts, months, and versions."),
		mcp.WithOutputSchema[ListDatasetsOutput](),
	)
	s.AddTool(listTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		infos := st.List()
		out := ListDatasetsOutput{Datasets: infos, Count: len(infos)}
		summary := fmt.Sprintf("datasets=%d", out.Count)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	})
	reg.Register(listTool)

	// close_dataset
	closeTool := mcp.NewTool(
		"close_dataset",
		mcp.WithDescription("Close a dataset handle and release its capacity slot."),
		mcp.WithInputSchema[CloseDatasetInput](),
		mcp.WithOutputSchema[struct {
			Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
		}](),
	)
	s.AddTool(closeTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in CloseDatasetInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		if err := st.CloseHandle(in.DatasetID); err != nil {
			return datasetError(err), nil
		}
		out := struct {
			Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
		}{Success: true}
		res := mcp.NewToolResultStructured(out, "closed")
		res.Content = []mcp.Content{mcp.NewTextContent("closed")}
		return res, nil
	}))
	reg.Register(closeTool)

	// list_months
	monthsTool := mcp.NewTool(
		"list_months",
		mcp.WithDescription("Return the distinct months present in a dataset, sorted ascending (YYYY-MM tokens; 'unspecified' sorts last). Use before compare_periods to pick valid period tokens."),
		mcp.WithInputSchema[ListMonthsInput](),
		mcp.WithOutputSchema[ListMonthsOutput](),
	)
	s.AddTool(monthsTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in ListMonthsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		ds, _, err := st.Snapshot(in.DatasetID)
		if err != nil {
			return datasetError(err), nil
		}
		months := ds.Months()
		out := ListMonthsOutput{DatasetID: in.DatasetID, Months: months, Count: len(months)}
		summary := fmt.Sprintf("months=%d", out.Count)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(strings.Join(months, ", "))}
		return res, nil
	}))
	reg.Register(monthsTool)

	// preview_rows
	previewTool := mcp.NewTool(
		"preview_rows",
		mcp.WithDescription("Return a filtered, paginated slice of dataset rows. Filters compose by AND: exact agent/merchant (ALL disables), exclusion tokens (substring match on agent), case-insensitive search, and month membership. Prefer cursor-first pagination: pass the returned nextCursor to resume; cursors bind to the dataset version and filter, and invalidate after ingestion. Errors include INVALID_DATASET, CURSOR_INVALID, and PAYLOAD_TOO_LARGE."),
		mcp.WithInputSchema[PreviewRowsInput](),
		mcp.WithOutputSchema[PreviewRowsOutput](),
	)
	s.AddTool(previewTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in PreviewRowsInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}

		pageSize := in.PageSize
		if pageSize <= 0 {
			pageSize = limits.PreviewRowLimit
		}
		offset := 0
		fh := filterHashFor(in.Agent, in.Merchant, in.ExcludeAgents, in.Search, in.Months)

		datasetID := in.DatasetID
		var wantVersion int64 = -1
		if in.Cursor != "" {
			cur, err := pagination.DecodeCursor(in.Cursor)
			if err != nil {
				return mcperr.New(mcperr.CursorInvalid, ""), nil
			}
			if datasetID == "" {
				datasetID = cur.Did
			} else if datasetID != cur.Did {
				return mcperr.New(mcperr.CursorInvalid, "cursor was issued for a different dataset"), nil
			}
			if cur.Fh != fh {
				return mcperr.New(mcperr.CursorInvalid, "cursor was issued under a different filter"), nil
			}
			offset = cur.Off
			if in.PageSize == 0 {
				pageSize = cur.Ps
			}
			wantVersion = cur.Dsv
		}

		ds, version, err := st.Snapshot(datasetID)
		if err != nil {
			return datasetError(err), nil
		}
		if wantVersion >= 0 && wantVersion != version {
			return mcperr.New(mcperr.CursorInvalid, "dataset changed since cursor was issued"), nil
		}

		filtered := metrics.Filter(ds, criteriaFrom(in.Agent, in.Merchant, in.ExcludeAgents, in.Search, in.Months))
		total := len(filtered)
		if offset > total {
			offset = total
		}
		end := offset + pageSize
		if end > total {
			end = total
		}
		page := filtered[offset:end]

		meta := PageMeta{Total: total, Returned: len(page), Truncated: end < total}
		if meta.Truncated {
			tok, cerr := pagination.EncodeCursor(pagination.Cursor{
				Did: datasetID,
				Dsv: version,
				Off: pagination.NextOffset(offset, len(page)),
				Ps:  pageSize,
				Fh:  fh,
			})
			if cerr != nil {
				return mcperr.New(mcperr.CursorBuildFailed, ""), nil
			}
			meta.NextCursor = tok
		}

		out := PreviewRowsOutput{DatasetID: datasetID, Rows: page, Meta: meta}
		if payloadTooLarge(out, limits.MaxPayloadBytes) {
			return mcperr.Wrapf(mcperr.PayloadTooLarge, "page of %d rows exceeds %d bytes; reduce page_size", len(page), limits.MaxPayloadBytes), nil
		}
		summary := fmt.Sprintf("total=%d returned=%d truncated=%v", meta.Total, meta.Returned, meta.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(previewTool)
}
