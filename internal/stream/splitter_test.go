package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/xstream-util/xstream/internal/pool"
)

// memProc collects one process's stdin in memory.
type memProc struct {
	buf      bytes.Buffer
	writeErr error
}

func (m *memProc) Stdin() (io.Writer, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &m.buf, nil
}

// memPool hands out a fresh in-memory process per Get.
type memPool struct {
	procs  []*memProc
	joins  int
	getErr error
}

func (m *memPool) Get() (pool.Process, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p := &memProc{}
	m.procs = append(m.procs, p)
	return p, nil
}

func (m *memPool) Join() error { m.joins++; return nil }
func (m *memPool) Close()      {}

func (m *memPool) segments() []string {
	out := make([]string, len(m.procs))
	for i, p := range m.procs {
		out[i] = p.buf.String()
	}
	return out
}

// chunkSource serves input in fixed chunks, growing its window only
// when Fill asks for more than is buffered. It simulates a reader
// whose refill boundaries fall at awkward places.
type chunkSource struct {
	chunks [][]byte
	buf    []byte
}

func newChunkSource(chunks ...string) *chunkSource {
	c := &chunkSource{}
	for _, s := range chunks {
		c.chunks = append(c.chunks, []byte(s))
	}
	return c
}

func (c *chunkSource) Fill(min int) ([]byte, error) {
	for len(c.buf) < min && len(c.chunks) > 0 {
		c.buf = append(c.buf, c.chunks[0]...)
		c.chunks = c.chunks[1:]
	}
	return c.buf, nil
}

func (c *chunkSource) Consume(n int) {
	c.buf = c.buf[n:]
}

func split(t *testing.T, s *Splitter, src Source) *memPool {
	t.Helper()
	p := &memPool{}
	if err := s.Run(p, src); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return p
}

func equalSegments(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitAdjacentDelimiters(t *testing.T) {
	s := &Splitter{Delim: []byte(",")}
	p := split(t, s, newChunkSource("a,b,,c"))

	// With no write-delimiter each matched delimiter is forwarded to
	// the segment that it terminates.
	equalSegments(t, p.segments(), []string{"a,", "b,", ",", "c"})
	if p.joins != 1 {
		t.Errorf("joins = %d, want 1", p.joins)
	}
}

func TestSplitDropsDelimiterWithEmptyWriteDelim(t *testing.T) {
	s := &Splitter{Delim: []byte(","), WriteDelim: []byte{}}
	p := split(t, s, newChunkSource("a,b,,c"))
	equalSegments(t, p.segments(), []string{"a", "b", "", "c"})
}

func TestTrailingPartialSegmentIsFlushed(t *testing.T) {
	s := &Splitter{Delim: []byte("\n")}
	p := split(t, s, newChunkSource("a\nb"))
	equalSegments(t, p.segments(), []string{"a\n", "b"})
}

func TestTrailingDelimiterEndsLastSegment(t *testing.T) {
	s := &Splitter{Delim: []byte("\n")}
	p := split(t, s, newChunkSource("a\n"))
	equalSegments(t, p.segments(), []string{"a\n"})
}

func TestDelimiterAcrossChunkBoundary(t *testing.T) {
	s := &Splitter{Delim: []byte("ab"), WriteDelim: []byte{}}
	p := split(t, s, newChunkSource("xa", "by"))
	equalSegments(t, p.segments(), []string{"x", "y"})
}

func TestRetainedBytesCompleteLaterMatch(t *testing.T) {
	// "za" alone cannot be ruled out as a match start; only "z" may be
	// released. The held-back "a" pairs with the next chunk's "ab" to
	// form "aab", matching at offset 1.
	s := &Splitter{Delim: []byte("ab"), WriteDelim: []byte{}}
	p := split(t, s, newChunkSource("za", "ab"))
	equalSegments(t, p.segments(), []string{"za"})
}

func TestWriteDelimiterSubstitution(t *testing.T) {
	s := &Splitter{Delim: []byte(","), WriteDelim: []byte(";;")}
	p := split(t, s, newChunkSource("a,b,c"))
	equalSegments(t, p.segments(), []string{"a;;", "b;;", "c"})
}

func TestRoundTripReproducesInput(t *testing.T) {
	input := "one\ntwo\n\nthree\nfour and more\nfive"
	s := &Splitter{Delim: []byte("\n")}
	p := split(t, s, newChunkSource(input))

	if got := strings.Join(p.segments(), ""); got != input {
		t.Errorf("rejoined = %q, want %q", got, input)
	}
}

func TestSegmentCountMatchesDelimiterCount(t *testing.T) {
	// Five non-overlapping delimiters, none trailing: six segments,
	// and no segment contains a full delimiter occurrence.
	input := "--a--b----c--end"
	s := &Splitter{Delim: []byte("--"), WriteDelim: []byte{}}
	p := split(t, s, newChunkSource(input))

	segs := p.segments()
	if len(segs) != 6 {
		t.Fatalf("segments = %q, want 6 of them", segs)
	}
	for i, seg := range segs {
		if strings.Contains(seg, "--") {
			t.Errorf("segment %d %q contains the delimiter", i, seg)
		}
	}
}

func TestEmptyInputProducesNoSegments(t *testing.T) {
	s := &Splitter{Delim: []byte("\n")}
	p := split(t, s, newChunkSource())
	if len(p.procs) != 0 {
		t.Errorf("procs = %d, want 0", len(p.procs))
	}
	if p.joins != 1 {
		t.Errorf("joins = %d, want 1", p.joins)
	}
}

func TestEmptyDelimiterRejected(t *testing.T) {
	s := &Splitter{}
	if err := s.Run(&memPool{}, newChunkSource("abc")); !errors.Is(err, ErrEmptyDelimiter) {
		t.Errorf("Run error = %v, want ErrEmptyDelimiter", err)
	}
}

func TestGetFailureAborts(t *testing.T) {
	want := errors.New("no more processes")
	s := &Splitter{Delim: []byte("\n")}
	p := &memPool{getErr: want}
	if err := s.Run(p, newChunkSource("a\nb")); !errors.Is(err, want) {
		t.Errorf("Run error = %v, want %v", err, want)
	}
	if p.joins != 0 {
		t.Error("Join should not run after an aborted acquisition")
	}
}

type failPool struct {
	memPool
}

func (f *failPool) Get() (pool.Process, error) {
	return &memProc{writeErr: pool.ErrStdinNotPiped}, nil
}

func TestMissingStdinAborts(t *testing.T) {
	s := &Splitter{Delim: []byte("\n")}
	if err := s.Run(&failPool{}, newChunkSource("a\n")); !errors.Is(err, pool.ErrStdinNotPiped) {
		t.Errorf("Run error = %v, want ErrStdinNotPiped", err)
	}
}

type errWriter struct{ err error }

func (e *errWriter) Write([]byte) (int, error) { return 0, e.err }

type errWriterPool struct {
	memPool
	w *errWriter
}

func (p *errWriterPool) Get() (pool.Process, error) { return p, nil }
func (p *errWriterPool) Stdin() (io.Writer, error)  { return p.w, nil }

func TestWriteFailureAborts(t *testing.T) {
	cause := errors.New("broken pipe")
	s := &Splitter{Delim: []byte("\n")}
	err := s.Run(&errWriterPool{w: &errWriter{err: cause}}, newChunkSource("a\nb"))

	var opErr *pool.Error
	if !errors.As(err, &opErr) || opErr.Op != pool.OpWrite {
		t.Fatalf("Run error = %v, want write Error", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap the cause: %v", err)
	}
}

type errSource struct{ err error }

func (e *errSource) Fill(int) ([]byte, error) { return nil, e.err }
func (e *errSource) Consume(int)              {}

func TestReadFailureAborts(t *testing.T) {
	cause := errors.New("disk gone")
	s := &Splitter{Delim: []byte("\n")}
	err := s.Run(&memPool{}, &errSource{err: cause})

	var opErr *pool.Error
	if !errors.As(err, &opErr) || opErr.Op != pool.OpRead {
		t.Fatalf("Run error = %v, want read Error", err)
	}
}

func TestReaderSourceGrowsAcrossRefills(t *testing.T) {
	// A real reader through bufio: the delimiter sits astride the
	// initial window when min forces a second read.
	src := NewSource(iotest(strings.NewReader("xxxab" + "yyy")), 2)
	s := &Splitter{Delim: []byte("ab"), WriteDelim: []byte{}}
	p := &memPool{}
	if err := s.Run(p, src); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	equalSegments(t, p.segments(), []string{"xxx", "yyy"})
}

// iotest yields one byte per Read call, the worst case for refill
// boundaries.
func iotest(r io.Reader) io.Reader { return &oneByteReader{r: r} }

type oneByteReader struct{ r io.Reader }

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}
