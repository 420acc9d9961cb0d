package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/carlodf/csvflow/record"
)

// Parser is a pure, stateless-between-calls tokenizer: it turns a text
// buffer into rows according to a fixed Config. It knows nothing about
// headers, dynamic typing, or chunk boundaries — see package handle and
// package streamer for those.
type Parser struct {
	cfg Config
}

// New builds a Parser from cfg, normalizing defaults and taking an
// independent copy so later mutation of the caller's Config cannot affect
// this Parser.
func New(cfg Config) *Parser {
	return &Parser{cfg: cfg.normalize()}
}

// ParseOptions controls a single Parse call.
type ParseOptions struct {
	// IgnoreLastRow drops the final row of the buffer when it has no
	// trailing terminator, so a streaming caller can carry it forward
	// into the next chunk instead of treating it as complete.
	IgnoreLastRow bool
	// Step, when set, receives each surviving row as it is produced and
	// disables accumulation into Result.Data, matching the constant
	// memory streaming path described for per-row callbacks.
	Step func(Row)
}

// Parse tokenizes input and returns the rows, any Quotes/Delimiter errors
// encountered, and parse metadata. Result.Meta.Cursor is relative to the
// start of input — callers that track an absolute position across chunks
// (package streamer) add their own base offset to it.
func (p *Parser) Parse(input string, opts ParseOptions) record.Result {
	cfg := p.cfg

	var errs []record.ParseError

	delimiter := cfg.Delimiter
	if delimiter == 0 {
		if cfg.DetectDelimiter != nil {
			delimiter = cfg.DetectDelimiter(input)
		} else {
			d, ok := DetectDelimiter(input, cfg.Newline, cfg.DelimitersToGuess)
			if !ok && input != "" {
				errs = append(errs, record.ParseError{
					Type:    record.ErrTypeDelimiter,
					Code:    record.CodeUndetectableDelimiter,
					Message: "unable to auto-detect a delimiter; falling back to ','",
				})
			}
			delimiter = d
		}
	}

	newline := cfg.Newline
	if newline == "" {
		newline = DetectNewline(input)
	}

	fast := cfg.FastMode != nil && *cfg.FastMode
	if cfg.FastMode == nil {
		fast = !strings.ContainsRune(input, cfg.QuoteChar)
	}

	acc := newAccumulator(cfg, opts.Step)

	var lastCompleteEndByte int
	if fast {
		lastCompleteEndByte = fastParse(input, delimiter, newline, opts.IgnoreLastRow, acc)
	} else {
		lastCompleteEndByte = slowParse(input, delimiter, newline, cfg, opts.IgnoreLastRow, acc)
	}

	data, rowErrors := acc.finish()
	errs = append(errs, rowErrors...)

	return record.Result{
		Data:   data,
		Errors: errs,
		Meta: record.Meta{
			Delimiter: delimiter,
			Linebreak: newline,
			Truncated: acc.truncated,
			Cursor:    int64(utf8.RuneCountInString(input[:lastCompleteEndByte])),
		},
	}
}
