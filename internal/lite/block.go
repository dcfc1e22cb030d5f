package lite

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
	"github.com/dgallion1/docingest/internal/scan"
)

// Format names this dialect in errors.
const Format = "lite"

// Option configures Parse.
type Option func(*config)

type config struct {
	title  string
	stream []scan.StreamOption
}

// WithTitle sets the document title. It defaults to the file name without extension.
func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithStreamOptions passes options to the underlying rune stream.
func WithStreamOptions(opts ...scan.StreamOption) Option {
	return func(c *config) { c.stream = append(c.stream, opts...) }
}

// Parse builds an unfinished document from the lightweight dialect. Errors are
// fatal: *doctree.ParseError for input no production matches, *doctree.IOError for
// read failures.
func Parse(r io.Reader, filename string, opts ...Option) (*doctree.Document, error) {
	cfg := config{title: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))}
	for _, o := range opts {
		o(&cfg)
	}
	lx := NewLexer(r, cfg.stream...)
	p := &parser{
		file:  filename,
		lines: lines(lx),
		doc:   doctree.New(filename, cfg.title),
	}
	p.sections[0] = p.doc.Root()
	err := p.parse()
	if serr := lx.Err(); serr != nil {
		if errors.Is(serr, scan.ErrBufferOverflow) {
			perr := doctree.NewParseError(Format, p.loc(lx.Pos()), "lookahead exceeds the read window")
			perr.Err = serr
			return nil, perr
		}
		return nil, doctree.NewIOError("read", filename, serr)
	}
	if err != nil {
		return nil, err
	}
	return p.doc, nil
}

type parser struct {
	file  string
	lines *scan.Lookahead[Line]
	doc   *doctree.Document
	// sections[d] is the innermost open component at depth d; sections[0] is the root.
	sections [3]*doctree.Component
	depth    int
}

func (p *parser) loc(pos scan.Position) doctree.Location {
	return doctree.Location{File: p.file, Line: pos.Line, Column: pos.Column}
}

func (p *parser) peek(k int) LineKind {
	l, ok := p.lines.Peek(k)
	if !ok {
		return LineFinish
	}
	return l.Kind
}

func (p *parser) current() *doctree.Component { return p.sections[p.depth] }

func (p *parser) parse() error {
	for {
		line, ok := p.lines.Peek(0)
		if !ok || line.Kind == LineFinish {
			return nil
		}
		switch line.Kind {
		case LineEmpty:
			p.lines.Skip(1)
		case LineText:
			if k := p.peek(1); k == LineH1 || k == LineH2 {
				p.heading(k)
				continue
			}
			p.paragraph(p.current())
		case LineContinue:
			p.paragraph(p.current())
		case LineItemised, LineOrdered:
			p.list(p.current())
		default:
			return doctree.NewParseError(Format, p.loc(line.Pos),
				"heading underline without a title line")
		}
	}
}

// heading consumes a text line and its underline and opens a section at depth 1 or 2.
func (p *parser) heading(under LineKind) {
	title, _ := p.lines.Next()
	p.lines.Skip(1)
	depth := 1
	if under == LineH2 {
		depth = 2
	}
	parent := p.sections[depth-1]
	if parent == nil {
		parent = p.sections[0]
	}
	sec := p.doc.NewComponent(parent, doctree.KindSection, p.loc(title.Pos))
	parseInlines(title.Tokens, sec.Title())
	p.sections[depth] = sec
	for d := depth + 1; d < len(p.sections); d++ {
		p.sections[d] = nil
	}
	p.depth = depth
}

// paragraph swallows text lines until a blank line, the end, a heading, or a line
// that starts another block.
func (p *parser) paragraph(into doctree.BlockContainer) {
	first, _ := p.lines.Next()
	para := doctree.NewParagraph(p.loc(first.Pos))
	toks := append([]Token(nil), first.Tokens...)
	for p.continuesParagraph() {
		next, _ := p.lines.Next()
		toks = appendLine(toks, next)
	}
	parseInlines(toks, para.Content)
	into.AppendBlock(para)
}

func (p *parser) continuesParagraph() bool {
	switch p.peek(0) {
	case LineText:
		k := p.peek(1)
		return k != LineH1 && k != LineH2
	case LineContinue:
		return true
	}
	return false
}

// appendLine joins a line onto a paragraph with one synthesised whitespace token.
func appendLine(toks []Token, l Line) []Token {
	toks = append(toks, Token{Kind: Whitespace, Text: " ", Pos: l.Pos})
	return append(toks, l.Tokens...)
}

// list collects consecutive items of the same kind. Blank lines followed by a
// continuation line resume the current item; blank lines followed by another item of
// the same kind continue the list; anything else ends it.
func (p *parser) list(into doctree.BlockContainer) {
	first, _ := p.lines.Peek(0)
	kind := first.Kind
	l := &doctree.List{Kind: doctree.ItemisedList, Loc: p.loc(first.Pos)}
	if kind == LineOrdered {
		l.Kind = doctree.OrderedList
	}
	into.AppendBlock(l)

	var item *doctree.ListItem
	for {
		blanks := 0
		for p.peek(blanks) == LineEmpty {
			blanks++
		}
		next := p.peek(blanks)
		switch {
		case next == kind:
			p.lines.Skip(blanks)
			line, _ := p.lines.Next()
			item = l.NewItem(p.loc(line.Pos))
			p.itemParagraph(item, line)
		case next == LineContinue && blanks > 0 && item != nil:
			p.lines.Skip(blanks)
			line, _ := p.lines.Next()
			p.itemParagraph(item, line)
		default:
			return
		}
	}
}

// itemParagraph adds a paragraph starting with first to item, joining the text and
// continuation lines that directly follow.
func (p *parser) itemParagraph(item *doctree.ListItem, first Line) {
	para := doctree.NewParagraph(p.loc(first.Pos))
	toks := append([]Token(nil), first.Tokens...)
	for p.continuesParagraph() {
		next, _ := p.lines.Next()
		toks = appendLine(toks, next)
	}
	parseInlines(toks, para.Content)
	item.AppendBlock(para)
}
