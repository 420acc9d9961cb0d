package streamer

import (
	"testing"

	"github.com/carlodf/csvflow/handle"
	"github.com/carlodf/csvflow/record"
)

// ---- fakes ----

// collectingSink accumulates whatever Complete/Error deliver, and exists so
// a test can assert on the terminal outcome of a Write/End sequence.
type collectingSink struct {
	completed *record.ParseResult
	err       error
}

func (c *collectingSink) Complete(result *record.ParseResult) { c.completed = result }
func (c *collectingSink) Error(err error)                     { c.err = err }

// stepCollectingSink additionally implements StepSink, so it receives one
// row at a time instead of the default whole-chunk accumulation.
type stepCollectingSink struct {
	collectingSink
	rows []record.Record
}

func (s *stepCollectingSink) Step(row record.ParseResult, ctl Control) {
	s.rows = append(s.rows, row.Data...)
}

// abortingStepSink calls ctl.Abort() once rows reaches abortAfter, so a test
// can check that no further rows in the same chunk are delivered afterward.
type abortingStepSink struct {
	collectingSink
	rows       []record.Record
	abortAfter int
}

func (s *abortingStepSink) Step(row record.ParseResult, ctl Control) {
	s.rows = append(s.rows, row.Data...)
	if len(s.rows) >= s.abortAfter {
		ctl.Abort()
	}
}

// pausingStepSink calls ctl.Pause() once rows reaches pauseAfter.
type pausingStepSink struct {
	collectingSink
	rows       []record.Record
	pauseAfter int
}

func (s *pausingStepSink) Step(row record.ParseResult, ctl Control) {
	s.rows = append(s.rows, row.Data...)
	if len(s.rows) >= s.pauseAfter {
		ctl.Pause()
	}
}

// chunkCollectingSink implements ChunkSink, receiving one Write call's rows
// at a time.
type chunkCollectingSink struct {
	collectingSink
	chunks []record.ParseResult
}

func (s *chunkCollectingSink) Chunk(result record.ParseResult, ctl Control) {
	s.chunks = append(s.chunks, result)
}

func valuesToStrings(vals []record.Value) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Str
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStreamer_DefaultSinkAccumulatesIntoEnd(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{Header: true}, sink)

	if err := s.Write("a,b\n1,"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("2\n3,4\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	res, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(res.Data), res.Data)
	}
	if res.Data[0].Named["a"].Str != "1" || res.Data[0].Named["b"].Str != "2" {
		t.Errorf("row0 = %v", res.Data[0].Named)
	}
	if sink.completed == nil {
		t.Fatal("expected Complete to be called")
	}
}

func TestStreamer_SeamAcrossChunkBoundary(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	// whole = "11,22\n33,44\n55,66\n", split mid-field, mid-row, and
	// exactly on a terminator.
	chunks := []string{"11,", "22\n33,44", "\n55,66\n"}
	for _, c := range chunks {
		if err := s.Write(c); err != nil {
			t.Fatalf("Write(%q): %v", c, err)
		}
	}
	res, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	want := [][]string{{"11", "22"}, {"33", "44"}, {"55", "66"}}
	if len(res.Data) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(res.Data), res.Data)
	}
	for i, row := range res.Data {
		got := valuesToStrings(row.Fields)
		if !equalStrings(got, want[i]) {
			t.Errorf("row %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestStreamer_StepSinkReceivesRowsImmediately(t *testing.T) {
	t.Parallel()
	sink := &stepCollectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("1,2\n3,4\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(sink.rows) != 2 {
		t.Fatalf("expected 2 rows delivered via Step, got %d", len(sink.rows))
	}
	if sink.completed.Data != nil {
		t.Errorf("expected Complete's Data to be nil once a StepSink consumed every row, got %v", sink.completed.Data)
	}
}

func TestStreamer_StepSinkAbortStopsDeliveryWithinSameChunk(t *testing.T) {
	t.Parallel()
	sink := &abortingStepSink{abortAfter: 1}
	s := New(Config{}, handle.Config{}, sink)

	// All three rows arrive in a single Write call, so without per-row
	// observation of the abort flag every row would be delivered before
	// the loop ever gets a chance to notice.
	if err := s.Write("1,2\n3,4\n5,6\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected delivery to stop after 1 row, got %d", len(sink.rows))
	}
	if sink.completed == nil || !sink.completed.Meta.Aborted {
		t.Fatal("expected abort to finish the streamer with Meta.Aborted = true")
	}
}

func TestStreamer_StepSinkPauseStopsDeliveryWithinSameChunk(t *testing.T) {
	t.Parallel()
	sink := &pausingStepSink{pauseAfter: 1}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("1,2\n3,4\n5,6\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected delivery to stop after 1 row once paused, got %d", len(sink.rows))
	}
	if !s.Paused() {
		t.Fatal("expected the streamer to still be paused")
	}
}

func TestStreamer_ChunkSinkReceivesPerWriteBatches(t *testing.T) {
	t.Parallel()
	sink := &chunkCollectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("1,2\n3,4\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("5,6\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(sink.chunks) != 2 {
		t.Fatalf("expected 2 chunk deliveries, got %d", len(sink.chunks))
	}
	if len(sink.chunks[0].Data) != 2 {
		t.Errorf("first chunk should carry 2 rows, got %d", len(sink.chunks[0].Data))
	}
	if len(sink.chunks[1].Data) != 1 {
		t.Errorf("second chunk should carry 1 row, got %d", len(sink.chunks[1].Data))
	}
}

func TestStreamer_AbortStopsIngestionAndMarksMeta(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("1,2\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s.Abort()
	if err := s.Write("3,4\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if sink.completed == nil {
		t.Fatal("expected abort to trigger Complete")
	}
	if !sink.completed.Meta.Aborted {
		t.Error("expected Meta.Aborted = true")
	}
	if err := s.Write("5,6\n"); err == nil {
		t.Error("expected Write after halt to return an error")
	}
}

func TestStreamer_PauseResumeDoesNotLoseState(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("1,2\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s.Pause()
	if !s.Paused() {
		t.Fatal("expected Paused() = true")
	}
	s.Resume()
	if s.Paused() {
		t.Fatal("expected Paused() = false after Resume")
	}
	if err := s.Write("3,4\n"); err != nil {
		t.Fatalf("Write after resume: %v", err)
	}
	res, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("expected 2 rows across the pause/resume, got %d", len(res.Data))
	}
}

func TestStreamer_SkipFirstNLinesAcrossChunks(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{SkipFirstNLines: 2}, handle.Config{}, sink)

	// The two lines to skip straddle a chunk boundary.
	if err := s.Write("skip1\nski"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write("p2\n1,2\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	res, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected 1 surviving row, got %d: %v", len(res.Data), res.Data)
	}
	if got := valuesToStrings(res.Data[0].Fields); !equalStrings(got, []string{"1", "2"}) {
		t.Errorf("row = %v, want [1 2]", got)
	}
}

func TestStreamer_BeforeFirstChunkReplacesInput(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{
		BeforeFirstChunk: func(chunk string) (string, bool) {
			return "replaced\n" + chunk, true
		},
	}, handle.Config{}, sink)

	if err := s.Write("1,2\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	res, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if len(res.Data) != 2 {
		t.Fatalf("expected 2 rows (replaced line + original), got %d", len(res.Data))
	}
	if res.Data[0].Fields[0].Str != "replaced" {
		t.Errorf("first row = %v, want replaced", res.Data[0].Fields)
	}
}

func TestStreamer_BOMStrippedFromFirstChunkOnly(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("\xef\xbb\xbf1,2\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	res, err := s.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if res.Data[0].Fields[0].Str != "1" {
		t.Errorf("first field = %q, want %q (BOM stripped)", res.Data[0].Fields[0].Str, "1")
	}
}

func TestStreamer_ErrorsAggregatesParseErrors(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{Header: true}, sink)

	if err := s.Write("a,b,c\n1,2\n1,2,3,4\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := s.Errors(); err == nil {
		t.Fatal("expected an aggregated error from the TooFewFields/TooManyFields rows")
	}
}

func TestStreamer_EndIsIdempotentAgainstDoubleCall(t *testing.T) {
	t.Parallel()
	sink := &collectingSink{}
	s := New(Config{}, handle.Config{}, sink)

	if err := s.Write("1,2\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := s.End(); err == nil {
		t.Error("expected a second End call to report an error")
	}
}
