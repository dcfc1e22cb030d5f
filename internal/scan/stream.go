// Package scan provides a backtracking rune stream with composable productions, and a
// generic pull-based lookahead sequence.
package scan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrBufferOverflow is reported when a mark would need more buffered input than the
// configured window allows.
var ErrBufferOverflow = errors.New("scan: lookahead window exceeded")

const defaultReadChunk = 4096

// Position is a point in the input. Offset counts runes from the start of input.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the extent and text of the most recently committed match.
type Span struct {
	Start Position
	End   Position
	Text  string
}

type mark struct {
	pos    Position
	prevCR bool
}

// Stream is a backtracking rune buffer over an io.Reader. It keeps a sliding window of
// input: runes before the oldest outstanding mark are discarded when the window is
// refilled, so arbitrarily deep nesting of Start/Commit/Rollback is supported.
type Stream struct {
	src io.RuneReader

	buf  []rune // window; buf[0] is at absolute offset base
	base int

	cur    Position
	prevCR bool // last consumed rune was '\r'; a following '\n' is the same line break

	marks []mark
	last  Span

	eof       bool
	err       error
	readChunk int
	maxWindow int
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithReadChunk sets how many runes are pulled from the source per refill.
func WithReadChunk(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.readChunk = n
		}
	}
}

// WithMaxWindow bounds the buffered window. Zero (the default) lets the window grow
// for as long as outstanding marks need it.
func WithMaxWindow(n int) StreamOption {
	return func(s *Stream) {
		if n >= 0 {
			s.maxWindow = n
		}
	}
}

// NewStream returns a stream reading runes from r.
func NewStream(r io.Reader, opts ...StreamOption) *Stream {
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	s := &Stream{
		src:       rr,
		cur:       Position{Line: 1, Column: 1},
		readChunk: defaultReadChunk,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Pos returns the cursor position.
func (s *Stream) Pos() Position { return s.cur }

// Err returns the first non-EOF error from the source, or ErrBufferOverflow.
func (s *Stream) Err() error { return s.err }

// Last returns the span recorded by the most recent successful Commit.
func (s *Stream) Last() Span { return s.last }

// Depth returns the number of outstanding marks.
func (s *Stream) Depth() int { return len(s.marks) }

// AtEOF reports whether no rune is left at the cursor.
func (s *Stream) AtEOF() bool {
	_, ok := s.Peek()
	return !ok
}

// Peek returns the rune at the cursor without consuming it.
func (s *Stream) Peek() (rune, bool) {
	return s.PeekAt(0)
}

// PeekAt returns the rune k positions past the cursor.
func (s *Stream) PeekAt(k int) (rune, bool) {
	if !s.fill(k + 1) {
		return 0, false
	}
	return s.buf[s.cur.Offset-s.base+k], true
}

// Next consumes and returns the rune at the cursor.
func (s *Stream) Next() (rune, bool) {
	r, ok := s.Peek()
	if !ok {
		return 0, false
	}
	s.advance(r)
	return r, true
}

func (s *Stream) advance(r rune) {
	s.cur.Offset++
	switch {
	case r == '\r':
		s.cur.Line++
		s.cur.Column = 1
		s.prevCR = true
	case r == '\n' && s.prevCR:
		s.prevCR = false
	case r == '\n':
		s.cur.Line++
		s.cur.Column = 1
	default:
		s.cur.Column++
		s.prevCR = false
	}
}

// Start pushes a mark at the cursor.
func (s *Stream) Start() {
	s.marks = append(s.marks, mark{pos: s.cur, prevCR: s.prevCR})
}

func (s *Stream) pop() mark {
	if len(s.marks) == 0 {
		panic("scan: Commit or Rollback without Start")
	}
	m := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	return m
}

// Commit pops the top mark, keeping everything consumed since it. It records the
// matched span and reports whether the cursor advanced.
func (s *Stream) Commit() bool {
	m := s.pop()
	if s.cur.Offset == m.pos.Offset {
		return false
	}
	s.last = Span{
		Start: m.pos,
		End:   s.cur,
		Text:  string(s.buf[m.pos.Offset-s.base : s.cur.Offset-s.base]),
	}
	return true
}

// Rollback pops the top mark and restores the cursor to it.
func (s *Stream) Rollback() {
	m := s.pop()
	s.cur, s.prevCR = m.pos, m.prevCR
}

// Unwind restores the cursor to the top mark and leaves the mark in place.
func (s *Stream) Unwind() {
	if len(s.marks) == 0 {
		panic("scan: Unwind without Start")
	}
	m := s.marks[len(s.marks)-1]
	s.cur, s.prevCR = m.pos, m.prevCR
}

// fill makes sure n runes are buffered from the cursor on.
func (s *Stream) fill(n int) bool {
	for s.cur.Offset-s.base+n > len(s.buf) {
		if s.eof {
			return false
		}
		s.compact()
		if !s.read() {
			return false
		}
	}
	return true
}

// compact discards runes no outstanding mark or the cursor can return to.
func (s *Stream) compact() {
	keep := s.cur.Offset
	if len(s.marks) > 0 {
		keep = s.marks[0].pos.Offset
	}
	drop := keep - s.base
	if drop <= 0 {
		return
	}
	n := copy(s.buf, s.buf[drop:])
	s.buf = s.buf[:n]
	s.base = keep
}

func (s *Stream) read() bool {
	for i := 0; i < s.readChunk; i++ {
		if s.maxWindow > 0 && len(s.buf) >= s.maxWindow {
			if i > 0 {
				return true
			}
			s.err = ErrBufferOverflow
			s.eof = true
			return false
		}
		r, _, err := s.src.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			s.eof = true
			return i > 0
		}
		s.buf = append(s.buf, r)
	}
	return true
}
