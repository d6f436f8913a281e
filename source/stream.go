package source

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync/atomic"
)

// streamSource reads a stream one line at a time. Each line read bumps the
// shared current-line counter, the same way a line-oriented read from user
// code would.
type streamSource struct {
	name    string
	origin  io.Reader
	r       *bufio.Reader
	buf     []byte // current line
	pos     int    // read position within buf
	offset  int
	line    int
	enc     Encoding
	lines   LineSink
	counter *atomic.Int64
	err     error // sticky read error, io.EOF included
}

// NewStream returns a line-oriented Source over r. counter is the shared
// current-line counter and may be nil.
func NewStream(name string, line int, r io.Reader, enc Encoding, lines LineSink, counter *atomic.Int64) Source {
	return &streamSource{
		name:    name,
		origin:  r,
		r:       bufio.NewReader(r),
		line:    line,
		enc:     enc,
		lines:   lines,
		counter: counter,
	}
}

func (s *streamSource) Name() string       { return s.name }
func (s *streamSource) Line() int          { return s.line }
func (s *streamSource) Offset() int        { return s.offset }
func (s *streamSource) Encoding() Encoding { return s.enc }

// fill loads the next line once the current one is exhausted.
func (s *streamSource) fill() error {
	for s.pos >= len(s.buf) {
		if s.err != nil {
			return s.err
		}
		line, err := s.r.ReadBytes('\n')
		if err != nil {
			s.err = err
		}
		if len(line) > 0 {
			s.buf, s.pos = line, 0
			if s.counter != nil {
				s.counter.Add(1)
			}
			if s.lines != nil {
				s.lines.AppendLine(string(line))
			}
			return nil
		}
	}
	return nil
}

func (s *streamSource) Next() (byte, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	ch := s.buf[s.pos]
	s.pos++
	s.offset++
	if ch == '\n' {
		s.line++
	}
	return ch, nil
}

func (s *streamSource) Peek() (byte, error) {
	if err := s.fill(); err != nil {
		return 0, err
	}
	return s.buf[s.pos], nil
}

// Remaining returns the rest of the current line followed by the unread
// stream. A sticky read error other than io.EOF is replayed to the reader
// of the segment.
func (s *streamSource) Remaining() (*Segment, bool) {
	rest := bytes.NewReader(append([]byte(nil), s.buf[s.pos:]...))
	s.pos = len(s.buf)
	var tail io.Reader = s.r
	if s.err != nil {
		tail = errReader{s.err}
	}
	return &Segment{Reader: io.MultiReader(rest, tail), origin: s.origin}, true
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) {
	if errors.Is(e.err, io.EOF) {
		return 0, io.EOF
	}
	return 0, e.err
}
