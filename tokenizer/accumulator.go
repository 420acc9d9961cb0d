package tokenizer

import (
	"strings"

	"github.com/carlodf/csvflow/record"
)

// Row is a single tokenized row before any header/typing semantics are
// applied; it is exactly what the state machine in parser.go produces.
type Row = []string

// accumulator collects rows produced by the state machine, applying the
// comments and skipEmptyLines filters at row-end and enforcing preview
// truncation. When step is set, rows are delivered to it immediately and
// never retained, matching the "zero out the internal data buffer after
// each call" streaming discipline the spec requires for the step fast
// path.
type accumulator struct {
	cfg       Config
	step      func(Row)
	data      []Row
	errors    []record.ParseError
	rowIndex  int
	truncated bool
}

func newAccumulator(cfg Config, step func(Row)) *accumulator {
	return &accumulator{cfg: cfg, step: step}
}

// addError appends a tokenizer-level error (Quotes or Delimiter category).
func (a *accumulator) addError(e record.ParseError) {
	a.errors = append(a.errors, e)
}

// maybeEmit applies the comments/skipEmptyLines filter to a completed row
// and, if it survives, delivers it via step or appends it to data. It
// returns true when the caller should stop parsing (preview limit
// reached).
func (a *accumulator) maybeEmit(rawLine string, fields Row) bool {
	if a.isComment(rawLine) {
		return false
	}
	if a.isSkippedEmpty(rawLine, fields) {
		return false
	}

	if a.step != nil {
		a.step(fields)
	} else {
		a.data = append(a.data, fields)
	}
	a.rowIndex++

	if a.cfg.Preview > 0 && a.rowIndex >= a.cfg.Preview {
		a.truncated = true
		return true
	}
	return false
}

func (a *accumulator) isComment(rawLine string) bool {
	if a.cfg.Comments == "" {
		return false
	}
	trimmed := strings.TrimLeft(rawLine, " \t")
	return strings.HasPrefix(trimmed, a.cfg.Comments)
}

func (a *accumulator) isSkippedEmpty(rawLine string, fields Row) bool {
	switch a.cfg.SkipEmptyLines {
	case SkipEmptyLinesOn:
		return rawLine == ""
	case SkipEmptyLinesGreedy:
		if rawLine == "" {
			return true
		}
		for _, f := range fields {
			if strings.TrimSpace(f) != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// finish returns the accumulated rows (nil when a step callback consumed
// them) and the tokenizer-level errors collected along the way.
func (a *accumulator) finish() ([]record.Record, []record.ParseError) {
	if a.step != nil {
		return nil, a.errors
	}
	out := make([]record.Record, len(a.data))
	for i, row := range a.data {
		out[i] = toRecordRow(row)
	}
	return out, a.errors
}

// toRecordRow wraps a raw tokenized row into the record package's Record
// type with every field as a plain string value; higher layers (package
// handle) are responsible for header mapping and dynamic typing.
func toRecordRow(fields Row) record.Record {
	r := record.Record{Fields: make([]record.Value, len(fields))}
	for i, f := range fields {
		r.Fields[i] = record.StringValue(f)
	}
	return r
}
