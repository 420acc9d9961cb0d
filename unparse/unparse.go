package unparse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carlodf/csvflow/record"
)

// Objects renders rows, each a map from column name to value, as CSV text.
// The header is cfg.Columns if set, otherwise the sorted union of keys
// across all rows. Go's map type carries no insertion order to recover, so
// "first occurrence order" from the original object-array semantics is not
// representable here; a caller that needs a specific column order must set
// cfg.Columns explicitly.
func Objects(rows []map[string]record.Value, cfg Config) (string, error) {
	cfg = cfg.normalize()
	columns := cfg.Columns
	if len(columns) == 0 {
		columns = unionKeys(rows)
	}

	data := make([][]record.Value, len(rows))
	for i, row := range rows {
		values := make([]record.Value, len(columns))
		for j, col := range columns {
			values[j] = row[col]
		}
		data[i] = values
	}
	return Envelope(columns, data, cfg)
}

// Arrays renders rows of plain positional values as CSV text. No header is
// emitted unless cfg.Header is true (or unset) and cfg.Columns supplies the
// names.
func Arrays(rows [][]record.Value, cfg Config) (string, error) {
	cfg = cfg.normalize()
	return Envelope(cfg.Columns, rows, cfg)
}

// Envelope renders an explicit {fields, data} pair as CSV text: fields is
// the header (used only when cfg.Header is true or unset), data the row
// values. Lines are newline-joined, not newline-terminated: the output
// never carries a trailing separator after the last line.
func Envelope(fields []string, data [][]record.Value, cfg Config) (string, error) {
	cfg = cfg.normalize()
	var b strings.Builder
	wroteAny := false

	if cfg.header() && len(fields) > 0 {
		b.WriteString(formatHeader(cfg, fields))
		wroteAny = true
	}
	for _, row := range data {
		if cfg.SkipEmptyLines == SkipEmptyLinesOn && isEmptyRow(row) {
			continue
		}
		if wroteAny {
			b.WriteString(cfg.Newline)
		}
		b.WriteString(formatRow(cfg, row))
		wroteAny = true
	}
	return b.String(), nil
}

func unionKeys(rows []map[string]record.Value) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// columnIndexError is returned by StreamWriter.WriteRow when the row width
// does not match the header most recently written, since the streaming
// writer cannot retroactively widen a header it already flushed.
type columnIndexError struct {
	got, want int
}

func (e columnIndexError) Error() string {
	return fmt.Sprintf("unparse: row has %d fields, header has %d", e.got, e.want)
}
