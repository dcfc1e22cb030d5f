package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dgallion1/docingest/internal/doctree"
)

var (
	kindColor = color.New(color.FgCyan).SprintFunc()
	idColor   = color.New(color.FgHiBlack).SprintFunc()
	diagColor = color.New(color.FgRed, color.Bold).SprintFunc()
)

// DefaultWidth is the wrap column for outline text.
const DefaultWidth = 80

// Outline writes an indented, human-readable rendering of doc to w. Paragraph text is
// wrapped at width columns; diagnostics are highlighted when color output is enabled.
func Outline(w io.Writer, doc *doctree.Document, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	o := &outliner{w: w, doc: doc, width: width}
	o.component(doc.Root(), 0)
	return o.err
}

type outliner struct {
	w     io.Writer
	doc   *doctree.Document
	width int
	err   error
}

func (o *outliner) printf(depth int, format string, args ...any) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

// text wraps s to the remaining width and indents every line after a prefix.
func (o *outliner) text(depth int, prefix, s string) {
	indent := strings.Repeat("  ", depth)
	avail := max(o.width-len(indent)-len(prefix), 20)
	lines := strings.Split(wordwrap.String(s, avail), "\n")
	for i, line := range lines {
		if i == 0 {
			o.printf(depth, "%s%s", prefix, line)
			continue
		}
		o.printf(depth, "%s%s", strings.Repeat(" ", len(prefix)), line)
	}
}

func (o *outliner) component(c *doctree.Component, depth int) {
	o.printf(depth, "%s %q %s %s", kindColor(c.Kind()), c.Title().Text(), idColor("#"+c.ID()), c.Location())
	o.diagnostics(depth+1, c.Title())
	for _, b := range c.Blocks() {
		o.block(b, depth+1, "")
	}
}

func (o *outliner) block(b doctree.Block, depth int, prefix string) {
	switch b := b.(type) {
	case *doctree.Paragraph:
		o.text(depth, prefix, b.Content.Text())
		o.diagnostics(depth+1, b.Content)
	case *doctree.List:
		for i, it := range b.Items {
			marker := "- "
			if b.Kind == doctree.OrderedList {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			if len(it.Blocks) == 0 {
				o.printf(depth, "%s", strings.TrimSpace(marker))
			}
			for j, ib := range it.Blocks {
				if j > 0 {
					marker = strings.Repeat(" ", len(marker))
				}
				o.block(ib, depth, marker)
			}
		}
	case *doctree.ProgramListing:
		o.printf(depth, "%s", kindColor("programlisting"))
		for _, line := range strings.Split(strings.TrimRight(b.Text, "\n"), "\n") {
			o.printf(depth+1, "| %s", line)
		}
	case *doctree.ErrorBlock:
		o.printf(depth, "%s", diagColor(diagnostic(b.Message, b.Loc)))
	case *doctree.UnknownBlock:
		loc := b.Loc
		o.printf(depth, "%s", diagColor(diagnostic("unknown element <"+b.Name+">", &loc)))
	case doctree.SubComponent:
		o.component(o.doc.Component(b.Ref), depth)
	}
}

// diagnostics lists inline errors under the line that rendered ic.
func (o *outliner) diagnostics(depth int, ic *doctree.InlineContainer) {
	for _, in := range ic.Inlines() {
		switch in := in.(type) {
		case doctree.Error:
			o.printf(depth, "%s", diagColor(diagnostic(in.Message, in.Loc)))
		case *doctree.Emphasis:
			o.diagnostics(depth, in.Content)
		}
	}
}

func diagnostic(msg string, loc *doctree.Location) string {
	if loc == nil {
		return "! " + msg
	}
	return fmt.Sprintf("! %s: %s", loc, msg)
}
