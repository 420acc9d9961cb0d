package streamer

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/carlodf/csvflow/handle"
	"github.com/carlodf/csvflow/record"
)

const byteOrderMark = "\xef\xbb\xbf"

// Streamer feeds chunks of text to a handle.Handle, carrying the unfinished
// tail of one chunk into the next (partialLine) and tracking an absolute
// cursor (baseIndex) across the whole logical input. It is the receiving
// half of the source/sink contract: callers push chunks in with Write and
// signal end of input with End; package source provides reference
// implementations of the pushing half.
type Streamer struct {
	cfg    Config
	handle *handle.Handle
	sink   EventSink
	id     uuid.UUID
	log    *logrus.Entry

	partialLine string
	rowCount    int
	baseIndex   int64

	firstChunk      bool
	skipRemaining   int
	aborted         atomic.Bool
	paused          atomic.Bool
	halted          atomic.Bool
	errorsSinceComplete []record.ParseError

	accumulated record.ParseResult
}

// New builds a Streamer around a fresh handle.Handle built from hcfg. The
// Streamer logs through logrus's standard logger, tagged with its session
// id: a warn line per ParseError and a debug line per chunk. There is no
// option to supply a different logger or to turn logging off per Streamer.
func New(cfg Config, hcfg handle.Config, sink EventSink) *Streamer {
	id := uuid.New()
	s := &Streamer{
		cfg:           cfg,
		handle:        handle.New(hcfg),
		sink:          sink,
		id:            id,
		firstChunk:    true,
		skipRemaining: cfg.SkipFirstNLines,
	}
	s.log = logrus.WithField("streamer_id", id.String())
	return s
}

// ID returns the session identifier assigned at construction.
func (s *Streamer) ID() uuid.UUID { return s.id }

// Paused reports whether Pause has been called without a matching Resume.
// A source implementation should stop calling Write while this is true.
func (s *Streamer) Paused() bool { return s.paused.Load() }

// Pause requests that the source stop delivering chunks. It is honored by
// the source, not enforced by Write itself (spec: backpressure is the
// source's responsibility).
func (s *Streamer) Pause() { s.paused.Store(true) }

// Resume clears a prior Pause.
func (s *Streamer) Resume() { s.paused.Store(false) }

// Abort halts ingestion. It is idempotent; the next Write or End call
// observes it, fires Complete with Meta.Aborted set, and halts the
// Streamer.
func (s *Streamer) Abort() {
	s.aborted.Store(true)
	s.handle.Abort()
}

// Write ingests one chunk, implementing the seam-preservation protocol:
// BOM strip and beforeFirstChunk hook on the first call, skipFirstNLines
// consumption, concatenation with the carried partial line, a semantic
// parse with ignoreLastRow=true (this is never the final chunk), and event
// delivery. A panic raised inside a sink callback propagates out of Write
// unchanged; Write does not recover from it.
func (s *Streamer) Write(chunk string) error {
	if s.halted.Load() {
		err := fmt.Errorf("streamer %s: Write called after End or Abort", s.id)
		s.sink.Error(err)
		return err
	}

	if s.firstChunk {
		if s.cfg.BeforeFirstChunk != nil {
			if replacement, ok := s.cfg.BeforeFirstChunk(chunk); ok {
				chunk = replacement
			}
		}
		chunk = strings.TrimPrefix(chunk, byteOrderMark)
		s.firstChunk = false
	}

	buffer := s.partialLine + chunk
	if s.skipRemaining > 0 {
		var removed int
		buffer, removed = stripLines(buffer, s.skipRemaining)
		s.skipRemaining -= removed
	}

	return s.ingest(buffer, true)
}

// End signals that no more chunks follow: the carried partial line (if
// any) is parsed with ignoreLastRow=false so a final row with no trailing
// terminator is still emitted, then Complete fires.
func (s *Streamer) End() (record.ParseResult, error) {
	if s.halted.Load() {
		return s.accumulated, fmt.Errorf("streamer %s: End called more than once", s.id)
	}
	if err := s.ingest(s.partialLine, false); err != nil {
		return s.accumulated, err
	}
	s.finish()
	return s.accumulated, nil
}

func (s *Streamer) ingest(buffer string, ignoreLastRow bool) error {
	res := s.handle.Parse(buffer, s.baseIndex, ignoreLastRow)

	consumedRunes := int(res.Meta.Cursor - s.baseIndex)
	s.partialLine = sliceByRunes(buffer, consumedRunes)
	s.baseIndex = res.Meta.Cursor
	s.rowCount += len(res.Data)
	s.errorsSinceComplete = append(s.errorsSinceComplete, res.Errors...)

	for _, e := range res.Errors {
		s.log.WithFields(logrus.Fields{
			"type": e.Type,
			"code": e.Code,
		}).Warn(e.Message)
	}
	s.log.WithFields(logrus.Fields{
		"row_count": s.rowCount,
		"cursor":    s.baseIndex,
	}).Debug("chunk ingested")

	ctl := Control{s: s}
	switch sink := s.sink.(type) {
	case StepSink:
		for _, row := range res.Data {
			sink.Step(record.ParseResult{
				Data:   []record.Record{row},
				Errors: res.Errors,
				Meta:   res.Meta,
			}, ctl)
			// A callback that paused or aborted mid-chunk must be honored
			// before the next row is emitted, not just before the next
			// Write/End call.
			if s.aborted.Load() || s.paused.Load() {
				break
			}
		}
	case ChunkSink:
		if len(res.Data) > 0 || len(res.Errors) > 0 {
			sink.Chunk(res, ctl)
		}
	default:
		s.accumulated.Data = append(s.accumulated.Data, res.Data...)
	}
	s.accumulated.Meta = res.Meta

	if res.Meta.Aborted || s.aborted.Load() {
		s.finish()
		return nil
	}
	return nil
}

func (s *Streamer) finish() {
	if s.halted.Swap(true) {
		return
	}
	s.accumulated.Errors = append(s.accumulated.Errors, s.errorsSinceComplete...)
	s.accumulated.Meta.Aborted = s.aborted.Load()
	s.sink.Complete(&s.accumulated)
}

// Errors returns the ParseErrors accumulated since construction (or the
// last call to Errors), wrapped as a single error: nil if there were none,
// the lone error if there was one, a *multierror.Error otherwise.
func (s *Streamer) Errors() error {
	if len(s.errorsSinceComplete) == 0 {
		return nil
	}
	if len(s.errorsSinceComplete) == 1 {
		lone := s.errorsSinceComplete[0]
		s.errorsSinceComplete = nil
		return lone
	}
	var merr *multierror.Error
	for _, e := range s.errorsSinceComplete {
		merr = multierror.Append(merr, e)
	}
	s.errorsSinceComplete = nil
	return merr.ErrorOrNil()
}

// stripLines removes up to n complete (newline-terminated) lines from the
// front of s, returning the remainder and how many it actually removed.
// "Complete" means terminated by '\n' (CRLF lines end in '\n' too, so this
// covers both without needing to know which newline convention is in
// effect yet — that is still auto-detected downstream).
func stripLines(s string, n int) (string, int) {
	removed := 0
	for removed < n {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			break
		}
		s = s[idx+1:]
		removed++
	}
	return s, removed
}

// sliceByRunes returns s starting at the n-th rune, the same convention
// package handle uses to honor the spec's character-based cursor.
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
