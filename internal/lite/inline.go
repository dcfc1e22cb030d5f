package lite

import (
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
	"github.com/dgallion1/docingest/internal/scan"
)

// parseInlines appends the inline content of toks to ic. Delimiter runs without a
// closer stay literal text.
func parseInlines(toks []Token, ic *doctree.InlineContainer) {
	la := scan.FromSlice(toks)
	for {
		tok, ok := la.Peek(0)
		if !ok {
			return
		}
		switch tok.Kind {
		case Backticks:
			if n := codeCloser(la, 0); n > 0 {
				la.Skip(1)
				ic.Append(doctree.Code{Value: joinText(la, n-1)})
				la.Skip(1)
				continue
			}
		case Underscore, Star:
			if n := emphasisCloser(la, tok); n > 0 {
				la.Skip(1)
				inner := make([]Token, 0, n-1)
				for i := 1; i < n; i++ {
					t, _ := la.Next()
					inner = append(inner, t)
				}
				la.Skip(1)
				em := &doctree.Emphasis{Content: &doctree.InlineContainer{}}
				ic.Append(em)
				parseInlines(inner, em.Content)
				continue
			}
		}
		la.Skip(1)
		ic.AppendText(tok.Text)
	}
}

// emphasisCloser returns the offset of the delimiter closing the emphasis opened at
// offset 0, or 0 if the delimiter does not open one. Code spans are skipped whole.
func emphasisCloser(la *scan.Lookahead[Token], open Token) int {
	next, ok := la.Peek(1)
	if !ok || next.Kind == open.Kind || next.Kind == Whitespace {
		return 0
	}
	for k := 1; ; k++ {
		t, ok := la.Peek(k)
		if !ok {
			return 0
		}
		switch {
		case t.Kind == Backticks:
			if end := codeCloser(la, k); end > 0 {
				k = end
			}
		case t.Kind == open.Kind && t.Text == open.Text:
			return k
		}
	}
}

// codeCloser returns the offset of the backtick run closing the one at offset at,
// or 0 if there is none. Only a run of the same length closes.
func codeCloser(la *scan.Lookahead[Token], at int) int {
	open, _ := la.Peek(at)
	for k := at + 1; ; k++ {
		t, ok := la.Peek(k)
		if !ok {
			return 0
		}
		if t.Kind == Backticks && t.Text == open.Text {
			return k
		}
	}
}

// joinText consumes n tokens and returns their text verbatim.
func joinText(la *scan.Lookahead[Token], n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		t, _ := la.Next()
		sb.WriteString(t.Text)
	}
	return sb.String()
}
