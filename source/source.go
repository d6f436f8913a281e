// Package source adapts in-memory buffers, byte slices and streams into a
// uniform, line-tracked byte source for the tokenizer.
//
// Every Source reports the line of the next unread byte and the number of
// bytes consumed so far. Lines are counted from the starting line handed to
// the constructor, which is how a parse configuration's line offset reaches
// the tokenizer.
package source

import (
	"io"
)

// Source is a positioned byte reader consumed by the tokenizer.
type Source interface {
	// Name is the file name used for diagnostics.
	Name() string
	// Next returns the next byte, or io.EOF at end of input. Any other
	// error is an I/O failure of the underlying input.
	Next() (byte, error)
	// Peek returns the next byte without consuming it.
	Peek() (byte, error)
	// Line returns the line of the next unread byte.
	Line() int
	// Offset returns the number of bytes consumed.
	Offset() int
	// Encoding is the encoding the bytes are declared in.
	Encoding() Encoding
	// Remaining returns the unread input as a readable segment. Only
	// line-oriented stream sources support it.
	Remaining() (*Segment, bool)
}

// Buffer is in-memory source text whose encoding is already known.
type Buffer struct {
	Data     []byte
	Encoding Encoding
}

// LineSink receives every complete source line read by a Source,
// including its trailing newline.
type LineSink interface {
	AppendLine(line string)
}

// Segment is the unread remainder of a stream, published as trailing data.
// Closing it closes the stream it came from.
type Segment struct {
	io.Reader
	origin io.Reader
}

// Origin is the stream the segment reads from.
func (s *Segment) Origin() io.Reader { return s.origin }

// Close closes the originating stream when it is closable.
func (s *Segment) Close() error {
	if c, ok := s.origin.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// byteSource reads a flat byte slice with direct offset tracking.
type byteSource struct {
	name  string
	data  []byte
	pos   int
	line  int
	enc   Encoding
	lines LineSink
	mark  int // start of the line being read, for the line sink
}

// NewBytes returns a Source over data. line is the number of the first
// line. lines may be nil.
func NewBytes(name string, line int, data []byte, enc Encoding, lines LineSink) Source {
	return &byteSource{name: name, data: data, line: line, enc: enc, lines: lines}
}

// NewBuffer returns a Source over buf, using the buffer's own encoding.
func NewBuffer(name string, line int, buf Buffer, lines LineSink) Source {
	return NewBytes(name, line, buf.Data, buf.Encoding, lines)
}

func (s *byteSource) Name() string       { return s.name }
func (s *byteSource) Line() int          { return s.line }
func (s *byteSource) Offset() int        { return s.pos }
func (s *byteSource) Encoding() Encoding { return s.enc }

func (s *byteSource) Next() (byte, error) {
	if s.pos >= len(s.data) {
		s.flush()
		return 0, io.EOF
	}
	ch := s.data[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.flush()
	}
	return ch, nil
}

func (s *byteSource) Peek() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	return s.data[s.pos], nil
}

// flush hands the bytes read since the last line break to the sink.
func (s *byteSource) flush() {
	if s.lines != nil && s.mark < s.pos {
		s.lines.AppendLine(string(s.data[s.mark:s.pos]))
	}
	s.mark = s.pos
}

func (s *byteSource) Remaining() (*Segment, bool) { return nil, false }
