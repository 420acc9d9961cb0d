// Package unparse turns record collections back into CSV text: the three
// input shapes (objects, arrays, fields+data envelope) the spec
// describes, plus a streaming writer for constant-memory export.
package unparse

import "regexp"

// QuotesKind identifies which alternative of a QuotesMode tagged union is
// populated.
type QuotesKind int

const (
	QuotesNever QuotesKind = iota
	QuotesAlways
	QuotesPerColumn
	QuotesPredicate
)

// QuotesMode controls which fields get wrapped in QuoteChar regardless of
// their content; a field is always quoted if its content requires it
// (contains the delimiter, quote char, or a newline) no matter what this
// says.
type QuotesMode struct {
	Kind      QuotesKind
	Columns   []bool
	Predicate func(value string, col int) bool
}

func (q QuotesMode) forces(value string, col int) bool {
	switch q.Kind {
	case QuotesAlways:
		return true
	case QuotesPerColumn:
		return col < len(q.Columns) && q.Columns[col]
	case QuotesPredicate:
		if q.Predicate == nil {
			return false
		}
		return q.Predicate(value, col)
	default:
		return false
	}
}

// EscapeFormulaeKind identifies which alternative of an EscapeFormulaeMode
// tagged union is populated.
type EscapeFormulaeKind int

const (
	EscapeFormulaeOff EscapeFormulaeKind = iota
	EscapeFormulaeOn
	EscapeFormulaePattern
)

// EscapeFormulaeMode controls prefixing a leading apostrophe onto values a
// spreadsheet would otherwise interpret as a formula.
type EscapeFormulaeMode struct {
	Kind    EscapeFormulaeKind
	Pattern *regexp.Regexp
}

// defaultFormulaPrefixes are the leading characters the spec calls out:
// =, +, -, @, tab, and carriage return.
var defaultFormulaPrefixes = regexp.MustCompile(`^[=+\-@\t\r]`)

func (e EscapeFormulaeMode) matches(value string) bool {
	switch e.Kind {
	case EscapeFormulaeOn:
		return defaultFormulaPrefixes.MatchString(value)
	case EscapeFormulaePattern:
		if e.Pattern == nil {
			return false
		}
		return e.Pattern.MatchString(value)
	default:
		return false
	}
}

// SkipEmptyLinesMode mirrors tokenizer.SkipEmptyLinesMode for the unparse
// side: whether a row with every field empty is still emitted.
type SkipEmptyLinesMode int

const (
	SkipEmptyLinesOff SkipEmptyLinesMode = iota
	SkipEmptyLinesOn
)

// Config configures every Unparser entry point and the StreamWriter.
type Config struct {
	Quotes     QuotesMode
	QuoteChar  rune
	EscapeChar rune
	Delimiter  rune
	// Header controls whether the first emitted row is a header of column
	// names. nil (the Config{} zero value) defaults to true, matching the
	// original codec's own default; pass Bool(false) to suppress it
	// explicitly.
	Header         *bool
	Newline        string
	SkipEmptyLines SkipEmptyLinesMode
	// Columns, when set, fixes the column order and set for Objects;
	// otherwise the header is the sorted union of keys across all rows
	// (see unionKeys).
	Columns        []string
	EscapeFormulae EscapeFormulaeMode
}

// Bool returns a pointer to b, for populating Config.Header.
func Bool(b bool) *bool { return &b }

// normalize returns cfg with its defaults applied: comma delimiter, double
// quote char, the quote char as its own escape, a CRLF newline, and a
// header row emitted by default — the bare Config{} zero value matches
// the original codec's own defaults, not Go's zero values.
func (c Config) normalize() Config {
	out := c
	if out.Delimiter == 0 {
		out.Delimiter = ','
	}
	if out.QuoteChar == 0 {
		out.QuoteChar = '"'
	}
	if out.EscapeChar == 0 {
		out.EscapeChar = out.QuoteChar
	}
	if out.Newline == "" {
		out.Newline = "\r\n"
	}
	if out.Header == nil {
		out.Header = Bool(true)
	}
	return out
}

// header reports whether cfg (already normalized) should emit a header row.
func (c Config) header() bool { return c.Header != nil && *c.Header }
