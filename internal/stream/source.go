package stream

import (
	"bufio"
	"errors"
	"io"
)

// Source is a peekable byte stream with fill/consume semantics.
//
// Fill returns the unconsumed bytes currently buffered, reading from
// the underlying stream until at least min bytes are available or the
// stream ends. Growing on demand is what lets the scanner see a
// delimiter whose bytes straddle a read boundary as a single match.
// The returned slice is only valid until the next Fill or Consume.
//
// Consume discards the first n buffered bytes.
type Source interface {
	Fill(min int) ([]byte, error)
	Consume(n int)
}

// readerSource adapts an io.Reader via bufio.
type readerSource struct {
	r *bufio.Reader
}

const defaultBufferSize = 64 * 1024

// NewSource wraps r in a buffered Source. min is the smallest window
// Fill must be able to provide, typically the delimiter length; the
// internal buffer is sized to hold at least that much.
func NewSource(r io.Reader, min int) Source {
	size := defaultBufferSize
	if size < min {
		size = min
	}
	return &readerSource{r: bufio.NewReaderSize(r, size)}
}

func (s *readerSource) Fill(min int) ([]byte, error) {
	if _, err := s.r.Peek(min); err != nil {
		// EOF with a short residual is not a failure; the scanner
		// flushes whatever is left.
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	if s.r.Buffered() == 0 {
		return nil, nil
	}
	return s.r.Peek(s.r.Buffered())
}

func (s *readerSource) Consume(n int) {
	_, _ = s.r.Discard(n)
}
