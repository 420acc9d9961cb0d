// Package handle wraps a single tokenizer.Parser invocation with
// header-aware semantics: header extraction and transformation, per-field
// transform and dynamic typing, and field-count reconciliation against the
// header. It knows nothing about chunk boundaries; see package streamer for
// that.
package handle

import (
	"math"
	"strconv"
	"strings"

	"github.com/carlodf/csvflow/record"
	"github.com/carlodf/csvflow/tokenizer"
)

// DynamicTypingKind identifies which alternative of a DynamicTyping tagged
// union is populated.
type DynamicTypingKind int

const (
	DynamicTypingOff DynamicTypingKind = iota
	DynamicTypingOn
	DynamicTypingPerColumn
	DynamicTypingPredicate
)

// DynamicTyping is the tagged union backing the dynamicTyping option: a
// flag, a per-column map, or a predicate over the column name or index.
// Columns is consulted by key (header name), so it only matches columns
// that have a header name; a column addressed by index is never typed in
// the per-column case. Predicate receives the header name (string) or,
// without one, the zero-based column index (int).
type DynamicTyping struct {
	Kind      DynamicTypingKind
	Columns   map[string]bool
	Predicate func(col any) bool
}

func (d DynamicTyping) appliesTo(col any) bool {
	switch d.Kind {
	case DynamicTypingOn:
		return true
	case DynamicTypingPerColumn:
		switch name := col.(type) {
		case string:
			return d.Columns[name]
		default:
			return false
		}
	case DynamicTypingPredicate:
		if d.Predicate == nil {
			return false
		}
		return d.Predicate(col)
	default:
		return false
	}
}

// Config configures a Handle. It embeds tokenizer.Config so every
// lower-level Parser option is reachable through one value.
type Config struct {
	tokenizer.Config

	// Header, when true, treats the first row produced by the Parser as
	// column names instead of data.
	Header bool
	// TransformHeader, when set, is applied to each raw header name with
	// its zero-based column index. A column whose transformed name is
	// empty is left out of Record.Named but kept in Record.Fields.
	TransformHeader func(name string, idx int) string
	// Transform, when set, is applied to every field value before
	// dynamic typing runs. col is the header name (string) when headers
	// are in effect, otherwise the zero-based column index (int).
	Transform func(value string, col any) string
	// DynamicTyping selects value coercion for string fields that look
	// like booleans or numbers.
	DynamicTyping DynamicTyping
}

// Handle wraps one logical parse (potentially spanning many chunks) with
// header state carried across calls.
type Handle struct {
	cfg        Config
	parser     *tokenizer.Parser
	headers    []string
	haveHeader bool
	aborted    bool
}

// New builds a Handle from cfg.
func New(cfg Config) *Handle {
	return &Handle{
		cfg:    cfg,
		parser: tokenizer.New(cfg.Config),
	}
}

// Abort sets a flag that Parse consults before doing any further work; it
// is also read by package streamer after each chunk to halt ingestion.
func (h *Handle) Abort() { h.aborted = true }

// Pause and Resume are no-ops at this layer; streamer.Streamer owns
// suspension of the chunk feed itself.
func (h *Handle) Pause()  {}
func (h *Handle) Resume() {}

// Aborted reports whether Abort has been called.
func (h *Handle) Aborted() bool { return h.aborted }

func coerce(raw string) record.Value {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "true":
		return record.BoolValue(true, raw)
	case "false":
		return record.BoolValue(false, raw)
	}
	if trimmed == "" || trimmed == "+" || trimmed == "-" {
		return record.StringValue(raw)
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return record.NumberValue(n, raw)
	}
	return record.StringValue(raw)
}
