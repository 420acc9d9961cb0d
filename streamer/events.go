package streamer

import "github.com/carlodf/csvflow/record"

// EventSink is the minimum a caller must implement to drive a Streamer:
// being told about terminal outcomes. Per-row or per-chunk delivery is
// opt-in — implement StepSink for one row at a time, or ChunkSink for one
// Write call's worth of rows at a time. A sink implementing neither gets
// its rows accumulated into the ParseResult End returns.
type EventSink interface {
	// Complete is called once, from End or from the Write or End call
	// that observes an abort, with the final accumulated result (nil
	// Data when a StepSink or ChunkSink already consumed every row).
	Complete(result *record.ParseResult)
	// Error is called for a condition that halts ingestion outright,
	// distinct from the non-fatal ParseErrors carried on ParseResult.
	Error(err error)
}

// StepSink receives one row at a time, as soon as it is produced, with
// Errors/Meta shared across the whole chunk that row came from.
type StepSink interface {
	Step(row record.ParseResult, ctl Control)
}

// ChunkSink receives one Write call's worth of rows at a time.
type ChunkSink interface {
	Chunk(result record.ParseResult, ctl Control)
}

// Control is the thin object handed to Step/Chunk callbacks so a consumer
// can apply backpressure without reaching into Streamer internals.
type Control struct {
	s *Streamer
}

func (c Control) Pause()  { c.s.Pause() }
func (c Control) Resume() { c.s.Resume() }
func (c Control) Abort()  { c.s.Abort() }
