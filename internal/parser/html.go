package parser

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docingest/internal/doctree"
)

// HTMLParser handles HTML files. h1-h6 become nested sections; an id on a heading
// becomes the section id, and links to "#id" become cross references.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, doctree.NewIOError("read", filename, err)
	}

	title := stem(filename)
	// Extract title from <title> tag if present.
	if t := findTitle(root); t != "" {
		title = t
	}
	doc := doctree.New(filename, title)
	c := &htmlConverter{loc: doctree.Location{File: filename}, outline: newOutline(doc)}

	// Find <body> or use whole document.
	if body := findBody(root); body != nil {
		c.blocks(body, nil)
	} else {
		c.blocks(root, nil)
	}
	return finish(doc)
}

type htmlConverter struct {
	loc     doctree.Location
	outline *outline
}

// blocks converts the children of n. A nil into means the top level, where headings
// open sections and content goes to the innermost one.
func (c *htmlConverter) blocks(n *html.Node, into doctree.BlockContainer) {
	// Loose text and inline elements between blocks gather into one paragraph.
	var loose *doctree.Paragraph
	target := func() doctree.BlockContainer {
		if into != nil {
			return into
		}
		return c.outline.current()
	}
	flush := func() {
		if loose != nil {
			loose.Content.TrimTrailingSpace()
			if !loose.Content.IsEmpty() {
				target().AppendBlock(loose)
			}
			loose = nil
		}
	}

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode {
			if level := headingLevel(ch.Data); level > 0 && into == nil {
				flush()
				sec := c.outline.heading(level, c.loc)
				if id := attrValue(ch, "id"); id != "" {
					sec.SetID(id)
				}
				c.inlines(ch, sec.Title())
				sec.Title().TrimTrailingSpace()
				continue
			}
			switch ch.Data {
			// Skip non-content elements.
			case "script", "style", "nav", "footer", "header", "head", "template":
				continue
			case "p", "blockquote", "td", "th", "dd", "dt", "figcaption", "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				p := doctree.NewParagraph(c.loc)
				c.inlines(ch, p.Content)
				p.Content.TrimTrailingSpace()
				if !p.Content.IsEmpty() {
					target().AppendBlock(p)
				}
				continue
			case "ul", "ol":
				flush()
				l := &doctree.List{Kind: doctree.ItemisedList, Loc: c.loc}
				if ch.Data == "ol" {
					l.Kind = doctree.OrderedList
				}
				for li := ch.FirstChild; li != nil; li = li.NextSibling {
					if li.Type == html.ElementNode && li.Data == "li" {
						c.blocks(li, l.NewItem(c.loc))
					}
				}
				target().AppendBlock(l)
				continue
			case "pre":
				flush()
				target().AppendBlock(&doctree.ProgramListing{
					Text: strings.TrimPrefix(rawText(ch), "\n"),
					Loc:  c.loc,
				})
				continue
			case "div", "section", "article", "main", "table", "tbody", "thead", "tr", "dl", "figure", "body":
				flush()
				c.blocks(ch, into)
				continue
			}
		}
		if loose == nil {
			loose = doctree.NewParagraph(c.loc)
		}
		c.inline(ch, loose.Content)
	}
	flush()
}

// inlines converts the children of n into ic.
func (c *htmlConverter) inlines(n *html.Node, ic *doctree.InlineContainer) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.inline(ch, ic)
	}
}

func (c *htmlConverter) inline(n *html.Node, ic *doctree.InlineContainer) {
	switch n.Type {
	case html.TextNode:
		ic.AppendText(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}
	switch n.Data {
	case "script", "style":
	case "br":
		ic.AppendText(" ")
	case "em", "i", "strong", "b":
		em := &doctree.Emphasis{Content: &doctree.InlineContainer{}}
		ic.Append(em)
		c.inlines(n, em.Content)
	case "code", "kbd", "samp", "tt":
		ic.Append(doctree.Code{Value: rawText(n)})
	case "a":
		if id, ok := fragmentRef(attrValue(n, "href")); ok {
			deferRef(ic, id, c.loc, "a")
			return
		}
		c.inlines(n, ic)
	default:
		c.inlines(n, ic)
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// rawText concatenates the text under n without normalising it.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(doctree.CollapseWhitespace(rawText(n)))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
