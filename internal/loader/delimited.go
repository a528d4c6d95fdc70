package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vinodismyname/merchstats/internal/metrics"
)

// LoadDelimited reads a CSV or TSV file into raw records. The first
// non-blank row is the header; ragged rows are tolerated (short rows leave
// trailing fields absent, long rows drop the overflow).
func LoadDelimited(path string, comma rune, maxRows int) (*Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open file: %w", err)
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	res := &Result{Source: path}
	var header []string

	for {
		cells, rerr := r.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("loader: parse row: %w", rerr)
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
	if header == nil {
		return nil, fmt.Errorf("loader: file has no header row")
	}
	if res.Records == nil {
		res.Records = []metrics.RawRecord{}
	}
	return res, nil
}
