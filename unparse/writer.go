package unparse

import (
	"strings"

	"github.com/carlodf/csvflow/record"
)

// formatField renders v exactly as the quoting policy dictates: decide
// whether quoting is required, apply formula-escaping first (it changes
// the text a quoting decision is based on), then quote and escape if
// needed.
func formatField(cfg Config, v record.Value, col int) string {
	text := v.String()
	if cfg.EscapeFormulae.matches(text) {
		text = "'" + text
	}

	needsQuote := cfg.Quotes.forces(text, col) || needsQuoteByContent(text, cfg)
	if !needsQuote {
		return text
	}

	escaped := strings.ReplaceAll(text, string(cfg.QuoteChar), string(cfg.EscapeChar)+string(cfg.QuoteChar))
	return string(cfg.QuoteChar) + escaped + string(cfg.QuoteChar)
}

func needsQuoteByContent(text string, cfg Config) bool {
	return strings.ContainsRune(text, cfg.Delimiter) ||
		strings.ContainsRune(text, cfg.QuoteChar) ||
		strings.ContainsRune(text, '\r') ||
		strings.ContainsRune(text, '\n')
}

// formatRow renders one row of values as a single CSV line, without a
// trailing newline.
func formatRow(cfg Config, values []record.Value) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = formatField(cfg, v, i)
	}
	return strings.Join(fields, string(cfg.Delimiter))
}

// formatHeader renders a header line from plain field names, quoting a
// name exactly as a data field would be quoted.
func formatHeader(cfg Config, fields []string) string {
	values := make([]record.Value, len(fields))
	for i, f := range fields {
		values[i] = record.StringValue(f)
	}
	return formatRow(cfg, values)
}

func isEmptyRow(values []record.Value) bool {
	for _, v := range values {
		if v.String() != "" {
			return false
		}
	}
	return true
}
