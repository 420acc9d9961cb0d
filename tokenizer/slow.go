package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/carlodf/csvflow/record"
)

// state is one node of the quote-aware tokenizer state machine described
// in the parser design: FieldStart, Unquoted, Quoted, QuotedEscape.
type state int

const (
	stateFieldStart state = iota
	stateUnquoted
	stateQuoted
	stateQuotedEscape
)

// slowParse runs the character-by-character state machine over input and
// returns the byte offset one past the last row it completed, mirroring
// fastParse's contract (see its doc comment).
//
// When escapeChar differs from quoteChar, a bare quoteChar inside a quoted
// field always closes it (there is no doubling convention in that
// configuration); escapeChar instead introduces a single literally-appended
// character, letting a quote be embedded without closing the field. When
// escapeChar equals quoteChar (the default), a quoteChar closes the field
// provisionally and stateQuotedEscape decides, from the following
// character, whether that was an embedded doubled quote or a real close.
func slowParse(input string, delim rune, newline string, cfg Config, ignoreLastRow bool, acc *accumulator) int {
	quote := cfg.QuoteChar
	escape := cfg.EscapeChar
	nlLen := len(newline)
	n := len(input)

	var field strings.Builder
	var row Row
	st := stateFieldStart
	rowStartByte := 0
	rowHasContent := false
	invalidQuote := false
	lastCompleteEnd := 0

	emitField := func() {
		row = append(row, field.String())
		field.Reset()
	}

	endRow := func(rowEndByte int) bool {
		rawLine := input[rowStartByte:rowEndByte]
		if invalidQuote {
			acc.addError(record.ParseError{
				Type:    record.ErrTypeQuotes,
				Code:    record.CodeInvalidQuotes,
				Message: "quote character found in unquoted field",
				Row:     record.IntPtr(acc.rowIndex),
			})
			invalidQuote = false
		}
		stop := acc.maybeEmit(rawLine, row)
		row = nil
		rowHasContent = false
		return stop
	}

	i := 0
	for i < n {
		if nlLen > 0 && (st == stateFieldStart || st == stateUnquoted || st == stateQuotedEscape) &&
			strings.HasPrefix(input[i:], newline) {
			rowEnd := i
			emitField()
			stop := endRow(rowEnd)
			i += nlLen
			rowStartByte = i
			st = stateFieldStart
			lastCompleteEnd = i
			if stop {
				return lastCompleteEnd
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(input[i:])

		switch st {
		case stateFieldStart:
			switch {
			case r == quote:
				st = stateQuoted
				rowHasContent = true
				i += size
			case r == delim:
				emitField()
				rowHasContent = true
				i += size
			default:
				field.WriteRune(r)
				rowHasContent = true
				st = stateUnquoted
				i += size
			}

		case stateUnquoted:
			switch {
			case r == delim:
				emitField()
				st = stateFieldStart
				i += size
			case r == quote:
				field.WriteRune(r)
				invalidQuote = true
				i += size
			default:
				field.WriteRune(r)
				i += size
			}

		case stateQuoted:
			switch {
			case escape != quote && r == escape:
				i += size
				if i < n {
					r2, size2 := utf8.DecodeRuneInString(input[i:])
					field.WriteRune(r2)
					i += size2
				}
			case r == quote:
				st = stateQuotedEscape
				i += size
			default:
				field.WriteRune(r)
				i += size
			}

		case stateQuotedEscape:
			switch {
			case r == quote:
				field.WriteRune(quote)
				st = stateQuoted
				i += size
			case r == delim:
				emitField()
				st = stateFieldStart
				i += size
			default:
				field.WriteRune(r)
				invalidQuote = true
				st = stateUnquoted
				i += size
			}
		}
	}

	if ignoreLastRow {
		return lastCompleteEnd
	}

	switch st {
	case stateFieldStart:
		if rowHasContent {
			emitField()
			endRow(n)
			lastCompleteEnd = n
		}
	case stateUnquoted:
		emitField()
		endRow(n)
		lastCompleteEnd = n
	case stateQuoted:
		acc.addError(record.ParseError{
			Type:    record.ErrTypeQuotes,
			Code:    record.CodeMissingQuotes,
			Message: "quoted field never closed before end of input",
			Row:     record.IntPtr(acc.rowIndex),
		})
		emitField()
		endRow(n)
		lastCompleteEnd = n
	case stateQuotedEscape:
		emitField()
		endRow(n)
		lastCompleteEnd = n
	}

	return lastCompleteEnd
}
