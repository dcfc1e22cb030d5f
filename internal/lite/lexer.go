// Package lite parses the lightweight line-oriented dialect: setext headings, "+",
// "*", "-" and "1." lists, paragraphs, _emphasis_, *emphasis* and `code` spans.
package lite

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docingest/internal/scan"
)

// TokenKind classifies a lexer token.
type TokenKind int

const (
	EOL TokenKind = iota
	Whitespace
	Equals
	Dash
	Plus
	Backticks
	Underscore
	Star
	OrderedMarker
	Word
)

var tokenNames = [...]string{
	EOL:           "EOL",
	Whitespace:    "Whitespace",
	Equals:        "Equals",
	Dash:          "Dash",
	Plus:          "Plus",
	Backticks:     "Backticks",
	Underscore:    "Underscore",
	Star:          "Star",
	OrderedMarker: "OrderedMarker",
	Word:          "Word",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is one lexeme with its start position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  scan.Position
}

// Width is the visual width of a whitespace token, with tabs counting as four.
func (t Token) Width() int {
	return len(t.Text) + 3*strings.Count(t.Text, "\t")
}

const delimiters = "=-+`_* \t\r\n"

var (
	eol        = scan.Alt(scan.Literal("\r\n"), scan.Char('\r'), scan.Char('\n'))
	whitespace = scan.OneOrMore(scan.OneOf(" \t"))
	equalsRun  = scan.OneOrMore(scan.Char('='))
	dashRun    = scan.OneOrMore(scan.Char('-'))
	backticks  = scan.OneOrMore(scan.Char('`'))
	ordered    = scan.Seq(scan.OneOrMore(scan.Range('0', '9')), scan.Char('.'))
	word       = scan.OneOrMore(scan.AnyExcept(delimiters))
)

type rule struct {
	kind      TokenKind
	p         scan.Production
	lineStart bool
}

// rules are tried in order; ordered markers must come before words.
var rules = []rule{
	{kind: EOL, p: eol},
	{kind: Whitespace, p: whitespace},
	{kind: OrderedMarker, p: ordered, lineStart: true},
	{kind: Equals, p: equalsRun},
	{kind: Dash, p: dashRun},
	{kind: Plus, p: scan.Char('+')},
	{kind: Backticks, p: backticks},
	{kind: Underscore, p: scan.Char('_')},
	{kind: Star, p: scan.Char('*')},
	{kind: Word, p: word},
}

// Lexer turns a rune stream into tokens.
type Lexer struct {
	s *scan.Stream
	// lineStart holds until the first non-whitespace token of a line.
	lineStart bool
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader, opts ...scan.StreamOption) *Lexer {
	return &Lexer{s: scan.NewStream(r, opts...), lineStart: true}
}

// Err reports a read failure from the underlying stream.
func (lx *Lexer) Err() error { return lx.s.Err() }

// Pos returns the position of the next token.
func (lx *Lexer) Pos() scan.Position { return lx.s.Pos() }

// Next returns the next token, or false at end of input.
func (lx *Lexer) Next() (Token, bool) {
	if lx.s.AtEOF() {
		return Token{}, false
	}
	for _, r := range rules {
		if r.lineStart && !lx.lineStart {
			continue
		}
		if !lx.s.Match(r.p) {
			continue
		}
		span := lx.s.Last()
		switch r.kind {
		case EOL:
			lx.lineStart = true
		case Whitespace:
		default:
			lx.lineStart = false
		}
		return Token{Kind: r.kind, Text: span.Text, Pos: span.Start}, true
	}
	// Every rune is covered by some rule; this only happens if the stream failed.
	return Token{}, false
}
