package lite

import (
	"strings"

	"github.com/dgallion1/docingest/internal/scan"
)

// LineKind classifies a source line.
type LineKind int

const (
	LineEmpty LineKind = iota
	LineText
	LineH1
	LineH2
	LineItemised
	LineOrdered
	LineContinue
	LineFinish
)

var lineNames = [...]string{
	LineEmpty:    "Empty",
	LineText:     "Text",
	LineH1:       "H1",
	LineH2:       "H2",
	LineItemised: "ItemisedListItem",
	LineOrdered:  "OrderedListItem",
	LineContinue: "Continue",
	LineFinish:   "Finish",
}

func (k LineKind) String() string { return lineNames[k] }

// continueWidth is the indentation that makes a line a continuation.
const continueWidth = 4

// Line is the classified content of one source line. For list items the marker and
// its following whitespace are removed; for continuation lines the indentation is.
type Line struct {
	Kind   LineKind
	Tokens []Token
	Pos    scan.Position
}

// lines returns the classified lines of lx. The last line is always LineFinish.
func lines(lx *Lexer) *scan.Lookahead[Line] {
	finished := false
	return scan.NewLookahead(func() (Line, bool) {
		if finished {
			return Line{}, false
		}
		pos := lx.Pos()
		var toks []Token
		sawEOL := false
		for {
			tok, ok := lx.Next()
			if !ok {
				break
			}
			if tok.Kind == EOL {
				sawEOL = true
				break
			}
			toks = append(toks, tok)
		}
		if !sawEOL && len(toks) == 0 {
			finished = true
			return Line{Kind: LineFinish, Pos: pos}, true
		}
		return classify(toks, pos), true
	})
}

func classify(toks []Token, pos scan.Position) Line {
	if n := len(toks); n > 0 && toks[n-1].Kind == Whitespace {
		toks = toks[:n-1]
	}
	if len(toks) == 0 {
		return Line{Kind: LineEmpty, Pos: pos}
	}
	if lead := toks[0]; lead.Kind == Whitespace {
		toks = toks[1:]
		if lead.Width() >= continueWidth || strings.Contains(lead.Text, "\t") {
			return Line{Kind: LineContinue, Tokens: toks, Pos: toks[0].Pos}
		}
	}
	first := toks[0]
	line := Line{Kind: LineText, Tokens: toks, Pos: first.Pos}
	switch {
	case len(toks) == 1 && first.Kind == Equals:
		line.Kind = LineH1
	case len(toks) == 1 && first.Kind == Dash:
		line.Kind = LineH2
	case len(toks) > 2 && toks[1].Kind == Whitespace && isItemMarker(first):
		line.Kind = LineItemised
		line.Tokens = toks[2:]
	case len(toks) > 2 && toks[1].Kind == Whitespace && first.Kind == OrderedMarker:
		line.Kind = LineOrdered
		line.Tokens = toks[2:]
	}
	return line
}

func isItemMarker(t Token) bool {
	switch t.Kind {
	case Plus, Star:
		return true
	case Dash:
		return t.Text == "-"
	}
	return false
}
