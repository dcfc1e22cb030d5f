package lite

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tok struct {
	Kind TokenKind
	Text string
}

func lexAll(t *testing.T, input string) []tok {
	t.Helper()
	lx := NewLexer(strings.NewReader(input))
	var out []tok
	for {
		tk, ok := lx.Next()
		if !ok {
			break
		}
		out = append(out, tok{tk.Kind, tk.Text})
	}
	if err := lx.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestLexer_Tokens(t *testing.T) {
	got := lexAll(t, "1. a_b `c`\n")
	want := []tok{
		{OrderedMarker, "1."},
		{Whitespace, " "},
		{Word, "a"},
		{Underscore, "_"},
		{Word, "b"},
		{Whitespace, " "},
		{Backticks, "`"},
		{Word, "c"},
		{Backticks, "`"},
		{EOL, "\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_OrderedMarkerOnlyAtLineStart(t *testing.T) {
	got := lexAll(t, "x 2.\n  3. y")
	want := []tok{
		{Word, "x"},
		{Whitespace, " "},
		{Word, "2."},
		{EOL, "\n"},
		{Whitespace, "  "},
		{OrderedMarker, "3."},
		{Whitespace, " "},
		{Word, "y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_Runs(t *testing.T) {
	got := lexAll(t, "===\r\n---+*``\r")
	want := []tok{
		{Equals, "==="},
		{EOL, "\r\n"},
		{Dash, "---"},
		{Plus, "+"},
		{Star, "*"},
		{Backticks, "``"},
		{EOL, "\r"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexer_Positions(t *testing.T) {
	lx := NewLexer(strings.NewReader("ab\r\ncd"))
	var last Token
	for {
		tk, ok := lx.Next()
		if !ok {
			break
		}
		last = tk
	}
	if last.Text != "cd" || last.Pos.Line != 2 || last.Pos.Column != 1 {
		t.Errorf("expected cd at 2:1, got %q at %v", last.Text, last.Pos)
	}
}

func TestToken_Width(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{" ", 1},
		{"    ", 4},
		{"\t", 4},
		{" \t", 5},
	}
	for _, tt := range tests {
		if got := (Token{Kind: Whitespace, Text: tt.text}).Width(); got != tt.want {
			t.Errorf("Width(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
