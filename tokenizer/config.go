// Package tokenizer implements the Parser state machine: a pure function of
// a text buffer and a delimiter/quote/newline configuration, producing rows
// plus quote and delimiter errors. It has no notion of headers, typing, or
// chunk streaming — those live in package handle and package streamer.
package tokenizer

// SkipEmptyLinesMode selects how blank lines are treated at row-end. The
// mode is checked once per completed row, never per character.
type SkipEmptyLinesMode int

const (
	// SkipEmptyLinesOff keeps every row, including wholly empty ones.
	SkipEmptyLinesOff SkipEmptyLinesMode = iota
	// SkipEmptyLinesOn drops rows that are empty after stripping CR/LF.
	SkipEmptyLinesOn
	// SkipEmptyLinesGreedy additionally drops rows whose fields are all
	// empty or whitespace-only.
	SkipEmptyLinesGreedy
)

// DefaultDelimitersToGuess is the ordered candidate list used for delimiter
// auto-detection when Config.Delimiter is zero and no DetectDelimiter
// predicate is supplied.
var DefaultDelimitersToGuess = []rune{',', '\t', '|', ';', '\x1e', '\x1f'}

// Config configures a Parser. The zero value is usable: New fills a zero
// QuoteChar with '"', a zero EscapeChar with QuoteChar, and an empty
// DelimitersToGuess with DefaultDelimitersToGuess.
type Config struct {
	// Delimiter is the field separator. Zero selects auto-detection
	// unless DetectDelimiter is set.
	Delimiter rune
	// DetectDelimiter, when non-nil, is invoked with the input of every
	// Parse call while Delimiter is zero, choosing the delimiter instead
	// of the field-count heuristic in DetectDelimiter.
	DetectDelimiter func(sample string) rune
	// Newline is "\r", "\n", "\r\n", or "" for auto-detection.
	Newline string
	// QuoteChar is the quote character. Defaults to '"'.
	QuoteChar rune
	// EscapeChar escapes a quote inside a quoted field. Defaults to
	// QuoteChar, in which case a doubled quote stands for one quote;
	// a different EscapeChar makes the next character literal.
	EscapeChar rune
	// Preview stops parsing after this many data rows, if positive.
	Preview int
	// FastMode forces fast (quote-unaware) or slow (state machine)
	// parsing. Nil selects fast mode only when the buffer contains no
	// QuoteChar.
	FastMode *bool
	// SkipEmptyLines selects blank-line handling.
	SkipEmptyLines SkipEmptyLinesMode
	// Comments, when non-empty, is a line prefix (after stripping
	// leading whitespace) that marks a row as a comment to discard.
	Comments string
	// DelimitersToGuess overrides DefaultDelimitersToGuess for
	// auto-detection.
	DelimitersToGuess []rune
}

// NewConfig returns a Config with the documented defaults applied:
// QuoteChar and EscapeChar default to '"', DelimitersToGuess defaults to
// DefaultDelimitersToGuess.
func NewConfig() Config {
	return Config{
		QuoteChar:         '"',
		EscapeChar:        '"',
		DelimitersToGuess: append([]rune(nil), DefaultDelimitersToGuess...),
	}
}

// normalize returns a defaulted, independent copy of cfg so later mutation
// of the caller's Config (or its slices) cannot affect a Parser already
// built from it — the same deep-copy-at-construction discipline the
// teacher applies to its registry and decoder configuration.
func (c Config) normalize() Config {
	out := c
	if out.QuoteChar == 0 {
		out.QuoteChar = '"'
	}
	if out.EscapeChar == 0 {
		out.EscapeChar = out.QuoteChar
	}
	if len(out.DelimitersToGuess) == 0 {
		out.DelimitersToGuess = DefaultDelimitersToGuess
	}
	out.DelimitersToGuess = append([]rune(nil), out.DelimitersToGuess...)
	return out
}
