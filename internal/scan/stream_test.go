package scan

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestStream_CommitRecordsSpan(t *testing.T) {
	s := NewStream(strings.NewReader("abc def"))
	if !s.Match(OneOrMore(Range('a', 'z'))) {
		t.Fatal("expected word to match")
	}
	got := s.Last()
	if got.Text != "abc" {
		t.Errorf("expected %q, got %q", "abc", got.Text)
	}
	if got.Start.Column != 1 || got.End.Column != 4 {
		t.Errorf("unexpected span columns %v-%v", got.Start, got.End)
	}
}

func TestStream_RollbackRestoresCursor(t *testing.T) {
	s := NewStream(strings.NewReader("123x"))
	if s.Match(Seq(OneOrMore(Range('0', '9')), Char('.'))) {
		t.Fatal("expected ordered marker not to match without '.'")
	}
	if s.Pos().Offset != 0 {
		t.Errorf("expected cursor at 0 after rollback, got %d", s.Pos().Offset)
	}
	r, _ := s.Next()
	if r != '1' {
		t.Errorf("expected '1', got %q", r)
	}
}

func TestStream_CommitWithoutProgressFails(t *testing.T) {
	s := NewStream(strings.NewReader("x"))
	s.Start()
	if s.Commit() {
		t.Error("expected empty commit to report no progress")
	}
}

func TestStream_Unwind(t *testing.T) {
	s := NewStream(strings.NewReader("abc"))
	s.Start()
	s.Next()
	s.Next()
	s.Unwind()
	if s.Depth() != 1 {
		t.Errorf("expected mark to stay, depth %d", s.Depth())
	}
	if s.Pos().Offset != 0 {
		t.Errorf("expected cursor at 0, got %d", s.Pos().Offset)
	}
	s.Next()
	if !s.Commit() || s.Last().Text != "a" {
		t.Errorf("expected commit of %q, got %q", "a", s.Last().Text)
	}
}

func TestStream_NestedMarks(t *testing.T) {
	s := NewStream(strings.NewReader("aab"))
	s.Start()
	s.Next()
	s.Start()
	s.Next()
	s.Next()
	s.Rollback()
	if s.Pos().Offset != 1 {
		t.Errorf("expected inner rollback to offset 1, got %d", s.Pos().Offset)
	}
	s.Rollback()
	if s.Pos().Offset != 0 {
		t.Errorf("expected outer rollback to offset 0, got %d", s.Pos().Offset)
	}
}

func TestStream_LineBreaks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		col   int
	}{
		{"lf", "a\nb", 2, 2},
		{"cr", "a\rb", 2, 2},
		{"crlf", "a\r\nb", 2, 2},
		{"lf cr", "a\n\rb", 3, 2},
		{"crlf crlf", "\r\n\r\nb", 3, 2},
		{"cr cr", "\r\rb", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream(strings.NewReader(tt.input))
			for {
				if _, ok := s.Next(); !ok {
					break
				}
			}
			if p := s.Pos(); p.Line != tt.line || p.Column != tt.col {
				t.Errorf("expected %d:%d, got %v", tt.line, tt.col, p)
			}
		})
	}
}

func TestStream_RollbackAcrossCRLF(t *testing.T) {
	s := NewStream(strings.NewReader("\r\nx"))
	s.Next()
	s.Start()
	s.Next()
	s.Rollback()
	s.Next()
	if p := s.Pos(); p.Line != 2 || p.Column != 1 {
		t.Errorf("expected 2:1, got %v", p)
	}
}

func TestStream_LookaheadBeyondReadChunk(t *testing.T) {
	input := strings.Repeat("a", 100) + "!"
	s := NewStream(strings.NewReader(input), WithReadChunk(3))
	s.Start()
	if !s.Match(OneOrMore(Char('a'))) {
		t.Fatal("expected run of a")
	}
	if !s.Match(Char('!')) {
		t.Fatal("expected '!'")
	}
	if !s.Commit() {
		t.Fatal("expected outer commit")
	}
	if s.Last().Text != input {
		t.Errorf("expected whole input in span, got %d runes", len(s.Last().Text))
	}
}

func TestStream_MaxWindowOverflow(t *testing.T) {
	s := NewStream(strings.NewReader(strings.Repeat("a", 50)), WithReadChunk(4), WithMaxWindow(8))
	s.Start()
	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	if !errors.Is(s.Err(), ErrBufferOverflow) {
		t.Errorf("expected ErrBufferOverflow, got %v", s.Err())
	}
}

func TestStream_WindowCompactsWithoutMarks(t *testing.T) {
	s := NewStream(strings.NewReader(strings.Repeat("a", 50)), WithReadChunk(4), WithMaxWindow(8))
	n := 0
	for {
		if _, ok := s.Next(); !ok {
			break
		}
		n++
	}
	if s.Err() != nil {
		t.Errorf("unexpected error: %v", s.Err())
	}
	if n != 50 {
		t.Errorf("expected 50 runes, got %d", n)
	}
}

func TestStream_SourceError(t *testing.T) {
	boom := errors.New("boom")
	s := NewStream(iotest.ErrReader(boom))
	if _, ok := s.Next(); ok {
		t.Fatal("expected no rune")
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("expected source error, got %v", s.Err())
	}
}

func TestValue_RollsBackOnFailure(t *testing.T) {
	digits := func(s *Stream) (string, bool) {
		if !s.Match(OneOrMore(Range('0', '9'))) {
			return "", false
		}
		text := s.Last().Text
		if !s.Match(Char('.')) {
			return "", false
		}
		return text, true
	}

	s := NewStream(strings.NewReader("42."))
	if v, ok := Value(s, digits); !ok || v != "42" {
		t.Errorf("expected (42, true), got (%q, %v)", v, ok)
	}

	s = NewStream(strings.NewReader("42x"))
	if _, ok := Value(s, digits); ok {
		t.Error("expected failure")
	}
	if s.Pos().Offset != 0 {
		t.Errorf("expected rollback to 0, got %d", s.Pos().Offset)
	}
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name  string
		p     Production
		input string
		want  string
	}{
		{"char", Char('='), "==", "="},
		{"one of", OneOf("+*"), "*x", "*"},
		{"range", Range('0', '9'), "7", "7"},
		{"any except", OneOrMore(AnyExcept(" \n")), "word rest", "word"},
		{"literal", Literal("\r\n"), "\r\nx", "\r\n"},
		{"alt", Alt(Literal("\r\n"), Char('\r'), Char('\n')), "\rx", "\r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream(strings.NewReader(tt.input))
			if !s.Match(tt.p) {
				t.Fatalf("expected match on %q", tt.input)
			}
			if got := s.Last().Text; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOneOrMore_FailsOnFirst(t *testing.T) {
	s := NewStream(strings.NewReader("x"))
	if s.Match(OneOrMore(Char('a'))) {
		t.Error("expected no match")
	}
}
