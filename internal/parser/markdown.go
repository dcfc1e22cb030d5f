package parser

import (
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	mdparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docingest/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark. Headings become nested
// sections; a "{#id}" heading attribute sets the section id, and links to "#id" become
// cross references.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, doctree.NewIOError("read", filename, err)
	}

	md := goldmark.New(goldmark.WithParserOptions(mdparser.WithHeadingAttribute()))
	root := md.Parser().Parse(text.NewReader(src))

	doc := doctree.New(filename, stem(filename))
	c := &mdConverter{
		src:     src,
		file:    filename,
		lines:   lineStarts(src),
		outline: newOutline(doc),
	}
	c.blocks(root, nil)
	return finish(doc)
}

type mdConverter struct {
	src     []byte
	file    string
	lines   []int
	outline *outline
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// locAt converts a byte offset into a 1-based line and rune column.
func (c *mdConverter) locAt(off int) doctree.Location {
	line := sort.Search(len(c.lines), func(i int) bool { return c.lines[i] > off })
	col := utf8.RuneCount(c.src[c.lines[line-1]:off]) + 1
	return doctree.Location{File: c.file, Line: line, Column: col}
}

// locOf returns the location of the first source line under n.
func (c *mdConverter) locOf(n ast.Node) doctree.Location {
	found := -1
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		if lines := n.Lines(); lines.Len() > 0 {
			found = lines.At(0).Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if found < 0 {
		return doctree.Location{File: c.file}
	}
	return c.locAt(found)
}

// blocks converts the block children of parent. A nil into means the top level,
// where headings open sections and content goes to the innermost one.
func (c *mdConverter) blocks(parent ast.Node, into doctree.BlockContainer) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		target := into
		if target == nil {
			target = c.outline.current()
		}
		loc := c.locOf(n)

		switch node := n.(type) {
		case *ast.Heading:
			if into != nil {
				c.paragraph(node, target, loc)
				continue
			}
			sec := c.outline.heading(node.Level, loc)
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					sec.SetID(string(b))
				}
			}
			c.inlines(node, sec.Title(), loc)
			sec.Title().TrimTrailingSpace()

		case *ast.Paragraph, *ast.TextBlock:
			c.paragraph(node, target, loc)

		case *ast.List:
			l := &doctree.List{Kind: doctree.ItemisedList, Loc: loc}
			if node.IsOrdered() {
				l.Kind = doctree.OrderedList
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				c.blocks(item, l.NewItem(c.locOf(item)))
			}
			target.AppendBlock(l)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			var buf strings.Builder
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(c.src))
			}
			target.AppendBlock(&doctree.ProgramListing{
				Text: strings.TrimSuffix(buf.String(), "\n"),
				Loc:  loc,
			})

		case *ast.Blockquote:
			c.blocks(node, target)
		}
	}
}

func (c *mdConverter) paragraph(n ast.Node, into doctree.BlockContainer, loc doctree.Location) {
	p := doctree.NewParagraph(loc)
	c.inlines(n, p.Content, loc)
	p.Content.TrimTrailingSpace()
	if !p.Content.IsEmpty() {
		into.AppendBlock(p)
	}
}

// inlines converts the inline children of n into ic.
func (c *mdConverter) inlines(n ast.Node, ic *doctree.InlineContainer, loc doctree.Location) {
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch node := ch.(type) {
		case *ast.Text:
			ic.AppendText(string(node.Segment.Value(c.src)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				ic.AppendText(" ")
			}
		case *ast.String:
			ic.AppendText(string(node.Value))
		case *ast.CodeSpan:
			ic.Append(doctree.Code{Value: c.plain(node)})
		case *ast.Emphasis:
			em := &doctree.Emphasis{Content: &doctree.InlineContainer{}}
			ic.Append(em)
			c.inlines(node, em.Content, loc)
		case *ast.Link:
			if id, ok := fragmentRef(string(node.Destination)); ok {
				deferRef(ic, id, loc, "link")
				continue
			}
			c.inlines(node, ic, loc)
		case *ast.AutoLink:
			ic.AppendText(string(node.Label(c.src)))
		case *ast.RawHTML:
		default:
			c.inlines(ch, ic, loc)
		}
	}
}

// plain returns the raw text under n.
func (c *mdConverter) plain(n ast.Node) string {
	var buf strings.Builder
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch node := ch.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(c.src))
		case *ast.String:
			buf.Write(node.Value)
		default:
			buf.WriteString(c.plain(ch))
		}
	}
	return buf.String()
}
