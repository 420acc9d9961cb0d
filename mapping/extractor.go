// Package mapping adapts a record.ParseResult into the generic
// decode-then-map pipeline the teacher built around its connector-backed
// decoders: an Extractor view over one row, a RecordIterator over many, and
// a Mapper[T]/StructIterator[T] pair that turns decoded rows into caller
// structs. The CSV-specific decoding itself stays in package handle and
// streamer; this package only adapts their already-decoded output.
package mapping

import "github.com/carlodf/csvflow/record"

// Extractor provides read-only, dual-indexed access to one decoded row, the
// same shape the teacher's transform.Extractor exposed over its generic
// connector records.
type Extractor interface {
	ByIndex(i int) (record.Value, bool)
	ByName(name string) (record.Value, bool)
	Len() int
	Names() []string
}

// rowExtractor adapts one record.Record plus the header names in effect
// for the parse it came from.
type rowExtractor struct {
	row    record.Record
	fields []string
}

func (r rowExtractor) ByIndex(i int) (record.Value, bool) {
	if i < 0 || i >= len(r.row.Fields) {
		return record.Value{}, false
	}
	return r.row.Fields[i], true
}

func (r rowExtractor) ByName(name string) (record.Value, bool) {
	if r.row.Named == nil {
		return record.Value{}, false
	}
	v, ok := r.row.Named[name]
	return v, ok
}

func (r rowExtractor) Len() int { return len(r.row.Fields) }

func (r rowExtractor) Names() []string { return r.fields }

// RecordIterator is a forward-only iterator over the rows of a
// record.ParseResult, grounded on transform.RecordIterator.
type RecordIterator interface {
	Next() bool
	Record() Extractor
	Err() error
}

type sliceIterator struct {
	res record.ParseResult
	pos int
}

// NewRecordIterator returns a RecordIterator over res.Data. res.Errors is
// not surfaced through Err: a ParseError is, by spec, non-fatal and
// travels alongside rows rather than aborting iteration; a caller that
// cares inspects res.Errors directly.
func NewRecordIterator(res record.ParseResult) RecordIterator {
	return &sliceIterator{res: res, pos: -1}
}

func (s *sliceIterator) Next() bool {
	s.pos++
	return s.pos < len(s.res.Data)
}

func (s *sliceIterator) Record() Extractor {
	return rowExtractor{row: s.res.Data[s.pos], fields: s.res.Meta.Fields}
}

func (s *sliceIterator) Err() error { return nil }
