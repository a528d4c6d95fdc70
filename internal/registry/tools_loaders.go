package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/merchstats/internal/loader"
	"github.com/vinodismyname/merchstats/internal/metrics"
	"github.com/vinodismyname/merchstats/internal/runtime"
	"github.com/vinodismyname/merchstats/internal/security"
	"github.com/vinodismyname/merchstats/internal/store"
	"github.com/vinodismyname/merchstats/pkg/mcperr"
	"github.com/vinodismyname/merchstats/pkg/validation"
)

// LoadFileInput defines parameters for loading records from a file.
type LoadFileInput struct {
	Path       string `json:"path" validate:"required,filepath_ext" jsonschema_description:"Path to a file inside an allowed directory (.xlsx, .xlsm, .csv, .tsv)"`
	Sheet      string `json:"sheet,omitempty" jsonschema_description:"Sheet name for workbook formats; defaults to the active sheet"`
	DatasetID  string `json:"dataset_id,omitempty" jsonschema_description:"Target dataset handle; a new dataset is created when omitted"`
	Mode       string `json:"mode,omitempty" validate:"omitempty,oneof=append replace" jsonschema_description:"Merge mode: append (default) or replace"`
	BatchMonth string `json:"batch_month,omitempty" jsonschema_description:"Fallback month for rows without their own month field"`
}

// LoadFileOutput summarizes a file load.
type LoadFileOutput struct {
	DatasetID string   `json:"dataset_id"`
	Source    string   `json:"source" jsonschema_description:"Canonical path of the loaded file"`
	Sheet     string   `json:"sheet,omitempty"`
	RowsRead  int      `json:"rowsRead" jsonschema_description:"Data rows read from the file"`
	Accepted  int      `json:"accepted" jsonschema_description:"Rows merged into the dataset"`
	Dropped   int      `json:"dropped" jsonschema_description:"Rows dropped for missing agent and merchant identity"`
	Truncated bool     `json:"truncated" jsonschema_description:"True when the batch row limit cut the read short"`
	TotalRows int      `json:"totalRows"`
	Version   int64    `json:"version"`
	Months    []string `json:"months"`
}

// RegisterLoaderTools wires the file-loading tools. These are hidden from
// discovery by LoaderToolFilter when no allow-list is configured.
func RegisterLoaderTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, st *store.Store, sec *security.Manager) {
	load := func(ctx context.Context, in LoadFileInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		canonical, err := sec.ValidatePath(in.Path)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrUnsupportedExtension):
				return mcperr.New(mcperr.UnsupportedFormat, ""), nil
			case errors.Is(err, security.ErrNotAllowed):
				return mcperr.New(mcperr.PermissionDenied, ""), nil
			case errors.Is(err, security.ErrNotFound):
				return mcperr.Wrapf(mcperr.LoadFailed, "file not found: %s", in.Path), nil
			default:
				return mcperr.Wrapf(mcperr.LoadFailed, "%v", err), nil
			}
		}

		result, err := loader.Load(canonical, in.Sheet, limits.MaxRowsPerBatch)
		if err != nil {
			return mcperr.Wrapf(mcperr.LoadFailed, "%v", err), nil
		}

		datasetID := in.DatasetID
		if datasetID == "" {
			datasetID, err = st.Create(ctx)
			if err != nil {
				return mcperr.Wrapf(mcperr.BusyResource, "dataset capacity reached (max=%d)", limits.MaxOpenDatasets), nil
			}
		}

		mode := metrics.Append
		if in.Mode == "replace" {
			mode = metrics.Replace
		}
		rows := metrics.BuildRows(result.Records, in.BatchMonth)
		merged, version, err := st.Merge(datasetID, rows, mode, in.BatchMonth)
		if err != nil {
			return datasetError(err), nil
		}

		out := LoadFileOutput{
			DatasetID: datasetID,
			Source:    result.Source,
			Sheet:     result.Sheet,
			RowsRead:  result.RowsRead,
			Accepted:  len(rows),
			Dropped:   result.RowsRead - len(rows),
			Truncated: result.Truncated,
			TotalRows: len(merged),
			Version:   version,
			Months:    merged.Months(),
		}
		summary := fmt.Sprintf("dataset_id=%s rowsRead=%d accepted=%d truncated=%v totalRows=%d", out.DatasetID, out.RowsRead, out.Accepted, out.Truncated, out.TotalRows)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}

	// load_workbook
	wbTool := mcp.NewTool(
		"load_workbook",
		mcp.WithDescription("Load merchant metric records from an Excel workbook sheet into a dataset. The first non-blank row is the header; column names resolve through the same aliases as ingest_records. Reads are bounded by the batch row limit. Errors include PERMISSION_DENIED, UNSUPPORTED_FORMAT, and LOAD_FAILED."),
		mcp.WithInputSchema[LoadFileInput](),
		mcp.WithOutputSchema[LoadFileOutput](),
	)
	s.AddTool(wbTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in LoadFileInput) (*mcp.CallToolResult, error) {
		return load(ctx, in)
	}))
	reg.Register(wbTool)

	// load_csv
	csvTool := mcp.NewTool(
		"load_csv",
		mcp.WithDescription("Load merchant metric records from a CSV or TSV file into a dataset. The first non-blank row is the header; ragged rows are tolerated. Errors include PERMISSION_DENIED, UNSUPPORTED_FORMAT, and LOAD_FAILED."),
		mcp.WithInputSchema[LoadFileInput](),
		mcp.WithOutputSchema[LoadFileOutput](),
	)
	s.AddTool(csvTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in LoadFileInput) (*mcp.CallToolResult, error) {
		return load(ctx, in)
	}))
	reg.Register(csvTool)
}
