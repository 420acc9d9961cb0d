package handle

import (
	"github.com/carlodf/csvflow/record"
	"github.com/carlodf/csvflow/tokenizer"
)

// Parse runs one semantic parse over buffer, a chunk (or accumulation of
// chunks) already read by the caller. baseIndex is added to every reported
// cursor so a caller tracking chunks (package streamer) sees an absolute
// position rather than one relative to this buffer. ignoreLastRow has the
// same meaning as tokenizer.ParseOptions.IgnoreLastRow: drop a trailing row
// with no terminator so the caller can carry it into the next call.
func (h *Handle) Parse(buffer string, baseIndex int64, ignoreLastRow bool) record.ParseResult {
	if h.aborted {
		return record.ParseResult{Meta: record.Meta{Aborted: true, Cursor: baseIndex}}
	}

	var errs []record.ParseError
	runesConsumed := 0
	remaining := buffer

	if h.cfg.Header && !h.haveHeader {
		headerParser := tokenizer.New(withPreviewOne(h.cfg.Config))
		headerRes := headerParser.Parse(remaining, tokenizer.ParseOptions{IgnoreLastRow: ignoreLastRow})
		errs = append(errs, headerRes.Errors...)
		if len(headerRes.Data) == 0 {
			// No complete header row yet; nothing consumed, wait for more
			// input. Propagate the tokenizer's own metadata (delimiter
			// detection errors in particular) without advancing state.
			return record.ParseResult{
				Errors: errs,
				Meta: record.Meta{
					Delimiter: headerRes.Meta.Delimiter,
					Linebreak: headerRes.Meta.Linebreak,
					Cursor:    baseIndex,
				},
			}
		}

		raw := headerRes.Data[0].Fields
		names := make([]string, len(raw))
		for i, v := range raw {
			name := v.Str
			if h.cfg.TransformHeader != nil {
				name = h.cfg.TransformHeader(name, i)
			}
			names[i] = name
		}
		h.headers = names
		h.haveHeader = true

		consumedRunes := int(headerRes.Meta.Cursor)
		runesConsumed += consumedRunes
		remaining = sliceByRunes(remaining, consumedRunes)
	}

	dataRes := h.parser.Parse(remaining, tokenizer.ParseOptions{IgnoreLastRow: ignoreLastRow})
	errs = append(errs, dataRes.Errors...)
	runesConsumed += int(dataRes.Meta.Cursor)

	// Lock the delimiter/newline this parse resolved in, once any row has
	// actually been consumed, so auto-detection runs against the first
	// chunk's sample only and later chunks cannot drift to a different
	// delimiter because a later sample happens to score differently.
	if dataRes.Meta.Cursor > 0 && (h.cfg.Delimiter == 0 || h.cfg.Newline == "") {
		locked := h.cfg.Config
		locked.Delimiter = dataRes.Meta.Delimiter
		locked.Newline = dataRes.Meta.Linebreak
		h.cfg.Config = locked
		h.parser = tokenizer.New(locked)
	}

	out := make([]record.Record, 0, len(dataRes.Data))
	for i, row := range dataRes.Data {
		rec, rowErrs := h.applyRowSemantics(row, i)
		out = append(out, rec)
		errs = append(errs, rowErrs...)
	}

	meta := record.Meta{
		Delimiter: dataRes.Meta.Delimiter,
		Linebreak: dataRes.Meta.Linebreak,
		Truncated: dataRes.Meta.Truncated,
		Cursor:    baseIndex + int64(runesConsumed),
	}
	if h.haveHeader {
		meta.Fields = append([]string(nil), h.headers...)
	}

	return record.ParseResult{Data: out, Errors: errs, Meta: meta}
}

// applyRowSemantics implements ParserHandle's per-row contract: transform,
// dynamic typing, then field-count reconciliation against the header.
func (h *Handle) applyRowSemantics(row record.Record, rowIndex int) (record.Record, []record.ParseError) {
	values := make([]record.Value, len(row.Fields))
	for i, v := range row.Fields {
		col := columnFor(h.headers, i)
		text := v.Str
		if h.cfg.Transform != nil {
			text = h.cfg.Transform(text, col)
		}
		if h.cfg.DynamicTyping.appliesTo(col) {
			values[i] = coerce(text)
		} else {
			values[i] = record.StringValue(text)
		}
	}

	rec := record.Record{Fields: values}
	if !h.haveHeader {
		return rec, nil
	}

	var errs []record.ParseError
	named := make(map[string]record.Value, len(h.headers))
	width := len(h.headers)

	for i, name := range h.headers {
		if name == "" {
			continue
		}
		if i < len(values) {
			if _, exists := named[name]; !exists {
				named[name] = values[i]
			}
		}
	}

	switch {
	case len(values) < width:
		errs = append(errs, record.ParseError{
			Type:    record.ErrTypeFieldMismatch,
			Code:    record.CodeTooFewFields,
			Message: "row has fewer fields than the header",
			Row:     record.IntPtr(rowIndex),
		})
	case len(values) > width:
		// Extra holds the ordered overflow list; Named only maps string
		// header names to single values, so the synthetic __parsed_extra
		// key lives on Record.Extra instead of forcing a list into Value.
		rec.Extra = append([]record.Value(nil), values[width:]...)
		errs = append(errs, record.ParseError{
			Type:    record.ErrTypeFieldMismatch,
			Code:    record.CodeTooManyFields,
			Message: "row has more fields than the header",
			Row:     record.IntPtr(rowIndex),
		})
	}

	rec.Named = named
	return rec, errs
}

func columnFor(headers []string, idx int) any {
	if idx < len(headers) {
		return headers[idx]
	}
	return idx
}

func withPreviewOne(cfg tokenizer.Config) tokenizer.Config {
	out := cfg
	out.Preview = 1
	return out
}

// sliceByRunes returns s starting at the n-th rune, matching the rune-based
// cursor contract the tokenizer reports; exported buffer slicing elsewhere
// in the module uses the same convention for the same reason.
func sliceByRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if n >= len(runes) {
		return ""
	}
	return string(runes[n:])
}
