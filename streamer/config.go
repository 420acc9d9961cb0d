// Package streamer implements chunked ingestion on top of package handle:
// seam preservation across Write calls, pause/resume/abort flow control,
// and event delivery to a caller-supplied EventSink. It is the chunked
// feed described for streaming sources (package source) that cannot hold
// an entire input in memory at once.
package streamer

// Config is the orthogonal surface streamer.New accepts alongside a
// handle.Config: the options that influence chunk ingestion itself rather
// than per-row semantics.
type Config struct {
	// BeforeFirstChunk, when set, is called once with the first chunk
	// Write receives; if it returns (replacement, true), replacement is
	// used as the chunk instead.
	BeforeFirstChunk func(chunk string) (string, bool)
	// SkipFirstNLines strips this many complete lines from the start of
	// the input before any parsing happens, across as many Write calls
	// as it takes to see that many line terminators.
	SkipFirstNLines int
	// ChunkSize is advisory only: the Streamer reacts to whatever size
	// the caller actually passes to Write and never slices input itself.
	ChunkSize int
}
