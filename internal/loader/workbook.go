package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/merchstats/internal/metrics"
)

// LoadWorkbook reads one sheet of an Excel workbook into raw records using
// the streaming row iterator. The first non-blank row is the header; blank
// rows are skipped. An empty sheet name selects the workbook's active sheet.
func LoadWorkbook(path, sheet string, maxRows int) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, ierr := f.GetSheetIndex(sheet); ierr != nil || idx < 0 {
		return nil, fmt.Errorf("loader: sheet not found: %q", sheet)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("loader: stream rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	res := &Result{Source: path, Sheet: sheet}
	var header []string

	for rows.Next() {
		cells, cerr := rows.Columns()
		if cerr != nil {
			return nil, fmt.Errorf("loader: read row: %w", cerr)
		}
		if isBlankRow(cells) {
			continue
		}
		if header == nil {
			header = normalizeHeader(cells)
			continue
		}
		if maxRows > 0 && res.RowsRead >= maxRows {
			res.Truncated = true
			break
		}
		res.Records = append(res.Records, rowToRecord(header, cells))
		res.RowsRead++
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("loader: iterate rows: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("loader: sheet %q has no header row", sheet)
	}
	if res.Records == nil {
		res.Records = []metrics.RawRecord{}
	}
	return res, nil
}
