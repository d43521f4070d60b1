// Package stream splits a byte stream on a delimiter and pipes each
// segment into a child process handed out by a pool.
package stream

import (
	"bytes"
	"errors"
	"io"

	"github.com/xstream-util/xstream/internal/events"
	"github.com/xstream-util/xstream/internal/logging"
	"github.com/xstream-util/xstream/internal/pool"
)

// ErrEmptyDelimiter reports a zero-length delimiter, which can never
// split anything.
var ErrEmptyDelimiter = errors.New("delimiter must not be empty")

// Splitter streams delimiter-separated segments of an input source
// into child processes, one pool acquisition per segment.
type Splitter struct {
	// Delim separates segments in the input. Must not be empty.
	Delim []byte

	// WriteDelim, when non-nil, is written downstream in place of every
	// matched delimiter; it may be empty to drop delimiters entirely.
	// When nil the original delimiter bytes are forwarded verbatim.
	WriteDelim []byte

	// Bus receives a SegmentWrittenEvent per completed segment. Nil
	// disables publishing.
	Bus *events.Bus

	// Logger for scan progress. Nil falls back to the stream module logger.
	Logger logging.Logger
}

// Run splits src on the configured delimiter, piping each segment to
// the process returned by one p.Get call, then waits for every child
// via p.Join. The first failure aborts the run; any bytes still
// buffered in src at that point are discarded, since the whole run is
// going down. Callers own the pool's Close and must invoke it on every
// exit path.
func (s *Splitter) Run(p pool.Pool, src Source) error {
	if len(s.Delim) == 0 {
		return ErrEmptyDelimiter
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.GetLogger("stream")
	}

	for index := 0; ; index++ {
		buf, err := src.Fill(1)
		if err != nil {
			return &pool.Error{Op: pool.OpRead, Err: err}
		}
		if len(buf) == 0 {
			break
		}

		proc, err := p.Get()
		if err != nil {
			return err
		}
		w, err := proc.Stdin()
		if err != nil {
			return err
		}

		n, err := s.writeSegment(w, src)
		if err != nil {
			return err
		}
		logger.Debug("segment complete", "index", index, "bytes", n)
		s.Bus.Publish(events.SegmentWrittenEvent{Index: index, Bytes: n})
	}

	return p.Join()
}

// writeSegment streams one segment to w and consumes it, including its
// terminating delimiter when one is found. It returns the number of
// bytes written downstream.
//
// The scan holds back the trailing len(Delim)-1 bytes whenever no
// match is in view: those bytes could be the left half of a delimiter
// that completes on the next fill, and releasing them would split a
// match in two. That retention rule is what bounds rescanning while
// guaranteeing no byte is written twice.
func (s *Splitter) writeSegment(w io.Writer, src Source) (int, error) {
	written := 0
	for {
		buf, err := src.Fill(len(s.Delim))
		if err != nil {
			return written, &pool.Error{Op: pool.OpRead, Err: err}
		}

		var consume int
		hit := false
		switch i := bytes.Index(buf, s.Delim); {
		case i >= 0:
			consume, hit = i+len(s.Delim), true
		case len(buf) < len(s.Delim):
			// The stream is exhausted: nothing can match any more, so
			// flush the residual as the final partial segment.
			consume = len(buf)
		default:
			consume = len(buf) - len(s.Delim) + 1
		}

		var n int
		if hit && s.WriteDelim != nil {
			if n, err = writeAll(w, buf[:consume-len(s.Delim)]); err == nil {
				var wn int
				wn, err = writeAll(w, s.WriteDelim)
				n += wn
			}
		} else {
			n, err = writeAll(w, buf[:consume])
		}
		written += n
		if err != nil {
			return written, err
		}

		src.Consume(consume)
		if hit || consume == 0 {
			return written, nil
		}
	}
}

func writeAll(w io.Writer, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := w.Write(b)
	if err != nil {
		return n, &pool.Error{Op: pool.OpWrite, Err: err}
	}
	return n, nil
}
