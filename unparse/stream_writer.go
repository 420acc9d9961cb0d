package unparse

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/carlodf/csvflow/record"
)

// heartbeatInterval is how often WriteRow logs a progress line, following
// the ambient logging choice of a sampled heartbeat rather than one line
// per row.
const heartbeatInterval = 100_000

// StreamWriter writes CSV output one row at a time directly to w, the way
// the teacher's muxReader writes bytes directly to an io.Pipe as they
// become available rather than buffering a whole result: there is no
// concurrent producer to multiplex here, so WriteRow is a plain synchronous
// write instead of a goroutine feeding a pipe.
type StreamWriter struct {
	w         io.Writer
	cfg       Config
	log       *logrus.Entry
	width     int
	haveWidth bool
	rows      int64
	wroteAny  bool
}

// NewStreamWriter builds a StreamWriter that writes to w under cfg.
func NewStreamWriter(w io.Writer, cfg Config) *StreamWriter {
	return &StreamWriter{
		w:   w,
		cfg: cfg.normalize(),
		log: logrus.WithField("component", "unparse.StreamWriter"),
	}
}

// WriteHeader writes fields as the header line and fixes the expected
// width every subsequent WriteRow call is checked against.
func (sw *StreamWriter) WriteHeader(fields []string) error {
	sw.width = len(fields)
	sw.haveWidth = true
	if !sw.cfg.header() {
		return nil
	}
	return sw.writeLine(formatHeader(sw.cfg, fields))
}

// WriteRow writes one data row. If WriteHeader was called first, the row
// width must match it.
func (sw *StreamWriter) WriteRow(values []record.Value) error {
	if sw.haveWidth && len(values) != sw.width {
		return columnIndexError{got: len(values), want: sw.width}
	}
	if sw.cfg.SkipEmptyLines == SkipEmptyLinesOn && isEmptyRow(values) {
		return nil
	}

	if err := sw.writeLine(formatRow(sw.cfg, values)); err != nil {
		return err
	}

	sw.rows++
	if sw.rows%heartbeatInterval == 0 {
		sw.log.WithField("rows", sw.rows).Debug("unparse progress")
	}
	return nil
}

// writeLine writes s, preceded by cfg.Newline if something was already
// written, so output is newline-joined rather than newline-terminated: the
// stream never carries a trailing separator after its last line.
func (sw *StreamWriter) writeLine(s string) error {
	if sw.wroteAny {
		if _, err := io.WriteString(sw.w, sw.cfg.Newline); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(sw.w, s); err != nil {
		return err
	}
	sw.wroteAny = true
	return nil
}
