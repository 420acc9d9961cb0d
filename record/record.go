// Package record defines the data model shared by the tokenizer, handle,
// streamer, and unparse packages: field values, records, parse errors, and
// the result envelope a parse produces.
//
// This package is pure data, in the same spirit as connector.SrcMeta in the
// teacher: no parsing behavior lives here, only the shapes parsing produces.
package record

import (
	"fmt"
	"strconv"
)

// ValueKind identifies which alternative of a Value is populated.
type ValueKind int

const (
	// KindString holds the field's original text, or a string produced by
	// a user transform. This is the default kind for every field until
	// dynamic typing coerces it.
	KindString ValueKind = iota
	// KindBool holds a value recognized by dynamic typing as "true" or
	// "false" (case-insensitive exact match).
	KindBool
	// KindNumber holds a value recognized by dynamic typing as a finite
	// floating point literal.
	KindNumber
)

// Value is a field value after optional transform and dynamic typing have
// run. A Value is always exactly one of String/Bool/Number; String is
// populated even when Kind is not KindString, holding the original text,
// so callers that don't care about typing can always read Str.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	Num  float64
}

// String returns the textual representation of v, formatting numbers and
// booleans the same way their source text would have looked if they round
// tripped through dynamic typing.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Str
	}
}

// StringValue builds a Value of KindString.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// BoolValue builds a Value of KindBool, retaining the original text in Str
// so formatting that needs the literal source (e.g. re-emitting CSV with
// dynamic typing off) still has it.
func BoolValue(b bool, original string) Value {
	return Value{Kind: KindBool, Bool: b, Str: original}
}

// NumberValue builds a Value of KindNumber, retaining the original text.
func NumberValue(n float64, original string) Value {
	return Value{Kind: KindNumber, Num: n, Str: original}
}

// ExtraField is one element of a __parsed_extra list: a field present in a
// row beyond the header's width (spec "TooManyFields" case).
type ExtraField = Value

// Record is one parsed row. Fields is the full positional field list,
// including columns whose transformed header name was dropped (see
// handle.Config.TransformHeader doc on the header-null decision). Named is
// nil when headers are not in effect; when present, it maps header name to
// the field's value, first-wins on duplicate header names (every
// occurrence of a duplicated name still has its own entry in Fields).
// Extra holds fields beyond the header's width; they do not appear in
// Named.
type Record struct {
	Fields []Value
	Named  map[string]Value
	Extra  []ExtraField
}

// ParsedExtraKey is the original codec's conventional name for TooManyFields
// overflow. Record.Named never holds this key; the overflow is carried on
// Record.Extra.
const ParsedExtraKey = "__parsed_extra"

// ParseErrorType is the coarse category of a ParseError.
type ParseErrorType string

// ParseErrorCode is the specific condition that produced a ParseError.
const (
	ErrTypeQuotes        ParseErrorType = "Quotes"
	ErrTypeFieldMismatch ParseErrorType = "FieldMismatch"
	ErrTypeDelimiter     ParseErrorType = "Delimiter"
)

type ParseErrorCode string

const (
	CodeMissingQuotes         ParseErrorCode = "MissingQuotes"
	CodeInvalidQuotes         ParseErrorCode = "InvalidQuotes"
	CodeUndetectableDelimiter ParseErrorCode = "UndetectableDelimiter"
	CodeTooFewFields          ParseErrorCode = "TooFewFields"
	CodeTooManyFields         ParseErrorCode = "TooManyFields"
)

// ParseError describes one non-fatal defect found while parsing. Row is nil
// when the error is not associated with a specific emitted data row (e.g.
// UndetectableDelimiter, which is detected before any row exists). Index,
// when set, is the byte offset within the buffer being parsed when the
// defect was found.
type ParseError struct {
	Type    ParseErrorType
	Code    ParseErrorCode
	Message string
	Row     *int
	Index   *int
}

// Error implements the error interface so a ParseError can be used anywhere
// a Go error is expected (e.g. wrapped into a multierror.Error by the
// streamer or CLI), even though spec-level parse errors are non-fatal and
// normally travel as a slice rather than as returned errors.
func (e ParseError) Error() string {
	if e.Row != nil {
		return fmt.Sprintf("%s/%s: %s (row %d)", e.Type, e.Code, e.Message, *e.Row)
	}
	return fmt.Sprintf("%s/%s: %s", e.Type, e.Code, e.Message)
}

// IntPtr is a small helper for constructing ParseError.Row/Index literals
// without a throwaway local variable at every call site.
func IntPtr(i int) *int { return &i }

// Meta carries metadata about a parse: the delimiter and newline in effect
// (possibly auto-detected), whether the parse was aborted or truncated by a
// preview limit, the cumulative cursor position, and the header names once
// captured.
type Meta struct {
	Delimiter rune
	Linebreak string
	Aborted   bool
	Truncated bool
	Cursor    int64
	Fields    []string
}

// Result is the outcome of a parse: the decoded rows, any non-fatal parse
// errors encountered along the way, and metadata about the parse itself.
type Result struct {
	Data   []Record
	Errors []ParseError
	Meta   Meta
}

// ParseResult is Result under the name used by the handle and streamer
// package signatures, where a value of this type is always the outcome of a
// semantic (header-aware) parse rather than a raw tokenizer pass.
type ParseResult = Result
