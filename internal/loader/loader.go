// Package loader reads merchant metric records from workbook and delimited
// text files. Files are converted into raw header-keyed records; all field
// coercion and alias resolution happens downstream in the metrics package.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vinodismyname/merchstats/internal/metrics"
)

// Result carries the records read from a file together with read metadata.
type Result struct {
	Records   []metrics.RawRecord
	Source    string
	Sheet     string
	RowsRead  int
	Truncated bool
}

// Load dispatches on file extension. sheet is only meaningful for workbook
// formats; maxRows bounds the number of data rows read (0 means unbounded).
func Load(path, sheet string, maxRows int) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadWorkbook(path, sheet, maxRows)
	case ".csv":
		return LoadDelimited(path, ',', maxRows)
	case ".tsv":
		return LoadDelimited(path, '\t', maxRows)
	default:
		return nil, fmt.Errorf("loader: unsupported file extension: %q", filepath.Ext(path))
	}
}

// rowToRecord zips a header row with a data row. Cells beyond the header are
// dropped; missing trailing cells are omitted rather than zero-filled so the
// alias lookup treats them as absent.
func rowToRecord(header, cells []string) metrics.RawRecord {
	rec := make(metrics.RawRecord, len(header))
	for i, key := range header {
		if key == "" {
			continue
		}
		if i >= len(cells) {
			continue
		}
		rec[key] = strings.TrimSpace(cells[i])
	}
	return rec
}

// normalizeHeader trims header cells and disambiguates duplicates by
// suffixing an ordinal, so repeated column names do not silently collide.
func normalizeHeader(cells []string) []string {
	seen := make(map[string]int, len(cells))
	out := make([]string, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			out[i] = ""
			continue
		}
		if n := seen[name]; n > 0 {
			out[i] = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			out[i] = name
		}
		seen[name]++
	}
	return out
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
