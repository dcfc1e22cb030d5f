package structured

import (
	"encoding/xml"

	"github.com/dgallion1/docingest/internal/doctree"
)

// Builder turns element events into an unfinished document. Events must come from a
// well-formed source: every StartElement is matched by one EndElement.
type Builder struct {
	ctx   *parseContext
	stack []frame
	root  *rootHandler
}

type frame struct {
	h    handler
	name string
}

// NewBuilder returns a builder for the named source file.
func NewBuilder(filename string, opts ...Option) *Builder {
	o := options{root: DefaultRootElement}
	for _, fn := range opts {
		fn(&o)
	}
	ctx := &parseContext{
		doc:  doctree.New(filename, ""),
		file: filename,
		root: o.root,
		loc:  doctree.Location{File: filename},
		ids:  make(map[string]doctree.Location),
	}
	b := &Builder{ctx: ctx, root: &rootHandler{}}
	b.root.start(ctx, nil)
	b.stack = []frame{{h: b.root}}
	return b
}

// SetLocation records where the next event starts.
func (b *Builder) SetLocation(line, column int) {
	b.ctx.loc = doctree.Location{File: b.ctx.file, Line: line, Column: column}
}

// StartElement opens an element. Elements outside the DocBook namespace never match
// a handler and are reported as unknown.
func (b *Builder) StartElement(name xml.Name, attrs []xml.Attr) {
	local := elementName(name)
	b.ctx.element = local
	h := b.top().h.child(b.ctx, local)
	h.start(b.ctx, attrs)
	b.stack = append(b.stack, frame{h: h, name: local})
}

// Characters delivers character data to the innermost open element.
func (b *Builder) Characters(text string) {
	top := b.top()
	b.ctx.element = top.name
	top.h.text(b.ctx, text)
}

// EndElement closes the innermost open element.
func (b *Builder) EndElement() {
	if len(b.stack) == 1 {
		return
	}
	top := b.top()
	b.ctx.element = top.name
	top.h.finish(b.ctx)
	b.stack = b.stack[:len(b.stack)-1]
}

// Depth returns the number of open elements.
func (b *Builder) Depth() int { return len(b.stack) - 1 }

// HasRoot reports whether the root element has been seen.
func (b *Builder) HasRoot() bool { return b.root.seen }

// Document returns the document built so far. It is not finished.
func (b *Builder) Document() *doctree.Document { return b.ctx.doc }

func (b *Builder) top() frame { return b.stack[len(b.stack)-1] }

func elementName(n xml.Name) string {
	if n.Space == "" || n.Space == Namespace {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
