// Package source supplies reference input sources for a streamer.Streamer:
// an in-memory string feeder and a file feeder. The core codec packages
// (tokenizer, handle, streamer, unparse) never depend on this package —
// it exists so the codec can be exercised and tested end to end, mirroring
// the teacher's own separation between its decoder core and its
// openers/opener source collaborators.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carlodf/csvflow/streamer"
)

// Feeder pushes an entire input into s via Write/End, honoring ctx
// cancellation and s's pause state between chunks.
type Feeder interface {
	Feed(ctx context.Context, s *streamer.Streamer) error
}

// feedChunks is the shared pump loop: call next() for each chunk in turn
// until it reports there is no more input, checking ctx and the streamer's
// pause state between every chunk exactly as the teacher's file opener
// checks ctx.Done() before each blocking read.
func feedChunks(ctx context.Context, s *streamer.Streamer, next func() (string, bool, error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		for s.Paused() {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		chunk, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			_, err := s.End()
			return err
		}
		if err := s.Write(chunk); err != nil {
			return err
		}
	}
}

// stringFeeder splits a fixed string into fixed-size rune chunks, grounded
// on opener.InMemorySource's role as the teacher's in-memory reference
// source.
type stringFeeder struct {
	text      []rune
	chunkSize int
}

// String returns a Feeder that pushes text into a streamer chunkSize runes
// at a time.
func String(text string, chunkSize int) Feeder {
	if chunkSize <= 0 {
		chunkSize = len([]rune(text))
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	return &stringFeeder{text: []rune(text), chunkSize: chunkSize}
}

func (f *stringFeeder) Feed(ctx context.Context, s *streamer.Streamer) error {
	pos := 0
	return feedChunks(ctx, s, func() (string, bool, error) {
		if pos >= len(f.text) {
			return "", false, nil
		}
		end := pos + f.chunkSize
		if end > len(f.text) {
			end = len(f.text)
		}
		chunk := string(f.text[pos:end])
		pos = end
		return chunk, true, nil
	})
}

// fileFeeder reads a file in fixed-size byte chunks, grounded on
// openers.File.Open: a lazily cleaned path, opened once, read sequentially.
type fileFeeder struct {
	path      string
	chunkSize int
}

// File returns a Feeder that reads path with os.Open and pushes it into a
// streamer chunkSize bytes at a time.
func File(path string, chunkSize int) Feeder {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &fileFeeder{path: path, chunkSize: chunkSize}
}

func (f *fileFeeder) Feed(ctx context.Context, s *streamer.Streamer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := os.Open(filepath.Clean(f.path))
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()
	return readerFeed(ctx, s, file, f.chunkSize, f.path)
}

// readerFeeder wraps an arbitrary io.Reader, letting a caller that already
// has its own byte stream — cmd/csvflow reading from stdin, for instance —
// reuse the same chunking and backpressure loop as String and File.
type readerFeeder struct {
	r         io.Reader
	chunkSize int
	label     string
}

// Reader returns a Feeder over an already-open io.Reader, read chunkSize
// bytes at a time. label is used only in wrapped error messages.
func Reader(r io.Reader, chunkSize int, label string) Feeder {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &readerFeeder{r: r, chunkSize: chunkSize, label: label}
}

func (f *readerFeeder) Feed(ctx context.Context, s *streamer.Streamer) error {
	return readerFeed(ctx, s, f.r, f.chunkSize, f.label)
}

func readerFeed(ctx context.Context, s *streamer.Streamer, r io.Reader, chunkSize int, label string) error {
	br := bufio.NewReaderSize(r, chunkSize)
	buf := make([]byte, chunkSize)
	return feedChunks(ctx, s, func() (string, bool, error) {
		n, err := br.Read(buf)
		if n > 0 {
			return string(buf[:n]), true, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", false, nil
			}
			return "", false, fmt.Errorf("read %s: %w", label, err)
		}
		return "", true, nil
	})
}
