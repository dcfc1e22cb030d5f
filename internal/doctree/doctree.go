// Package doctree holds the format-agnostic document tree shared by every ingestion
// front end, and the two-phase build/finish protocol that assigns ids and resolves
// cross references once the whole document is known.
package doctree

import (
	"fmt"
	"strings"
)

// Location identifies a position in a source file. Line and Column are 1-based;
// zero means unknown.
type Location struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

func (l Location) String() string {
	switch {
	case l.Line == 0:
		return l.File
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ComponentKind is the structural role of a Component.
type ComponentKind int

const (
	KindDocument ComponentKind = iota
	KindPart
	KindChapter
	KindAppendix
	KindSection
)

var kindNames = [...]string{
	KindDocument: "document",
	KindPart:     "part",
	KindChapter:  "chapter",
	KindAppendix: "appendix",
	KindSection:  "section",
}

func (k ComponentKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ComponentRef is the arena index of a Component within its Document.
type ComponentRef int

// NoComponent is the parent of the root component.
const NoComponent ComponentRef = -1

// Document is the root of a parsed document. It owns every Component in an arena;
// components refer to each other only by ComponentRef.
type Document struct {
	file       string
	components []*Component
	ids        map[string]ComponentRef
	finished   bool
}

// New returns an empty, unfinished document whose root component is titled title.
func New(file, title string) *Document {
	d := &Document{file: file}
	root := &Component{
		doc:    d,
		ref:    0,
		parent: NoComponent,
		kind:   KindDocument,
		title:  &InlineContainer{},
		loc:    Location{File: file, Line: 1, Column: 1},
	}
	root.title.AppendText(title)
	d.components = append(d.components, root)
	return d
}

// File returns the source file name the document was built from.
func (d *Document) File() string { return d.file }

// Root returns the document component.
func (d *Document) Root() *Component { return d.components[0] }

// Component returns the component stored at ref.
func (d *Document) Component(ref ComponentRef) *Component {
	if ref < 0 || int(ref) >= len(d.components) {
		return nil
	}
	return d.components[ref]
}

// Len returns the number of components, root included.
func (d *Document) Len() int { return len(d.components) }

// Finished reports whether Finish has completed.
func (d *Document) Finished() bool { return d.finished }

// Lookup returns the component carrying id. It only answers after Finish.
func (d *Document) Lookup(id string) (*Component, bool) {
	ref, ok := d.ids[id]
	if !ok {
		return nil, false
	}
	return d.components[ref], true
}

func (d *Document) mutable() {
	if d.finished {
		panic("doctree: document is finished and read-only")
	}
}

// NewComponent creates a component of the given kind as the last child of parent.
// The component appears both in parent's block list and in its child list.
func (d *Document) NewComponent(parent *Component, kind ComponentKind, loc Location) *Component {
	d.mutable()
	if parent == nil || parent.doc != d {
		panic("doctree: parent component belongs to another document")
	}
	c := &Component{
		doc:    d,
		ref:    ComponentRef(len(d.components)),
		parent: parent.ref,
		kind:   kind,
		title:  &InlineContainer{},
		loc:    loc,
	}
	d.components = append(d.components, c)
	parent.children = append(parent.children, c.ref)
	parent.blocks = append(parent.blocks, SubComponent{Ref: c.ref})
	return c
}

// Component is a titled structural node: the document itself, a part, chapter,
// appendix or section.
type Component struct {
	doc      *Document
	ref      ComponentRef
	parent   ComponentRef
	kind     ComponentKind
	id       string
	title    *InlineContainer
	loc      Location
	blocks   []Block
	children []ComponentRef
}

func (c *Component) Ref() ComponentRef       { return c.ref }
func (c *Component) Kind() ComponentKind     { return c.kind }
func (c *Component) ID() string              { return c.id }
func (c *Component) Title() *InlineContainer { return c.title }
func (c *Component) Location() Location      { return c.loc }
func (c *Component) Document() *Document     { return c.doc }

// Parent returns the enclosing component, or nil for the root.
func (c *Component) Parent() *Component {
	return c.doc.Component(c.parent)
}

// SetID records an explicit id. Surrounding whitespace is trimmed; an empty id leaves
// the component to receive an automatic one during Finish.
func (c *Component) SetID(id string) {
	c.doc.mutable()
	c.id = strings.TrimSpace(id)
}

// AppendBlock appends b to the component's content.
func (c *Component) AppendBlock(b Block) {
	c.doc.mutable()
	if sc, ok := b.(SubComponent); ok {
		panic(fmt.Sprintf("doctree: component %d must be created with NewComponent", sc.Ref))
	}
	c.blocks = append(c.blocks, b)
}

// Blocks returns the ordered content of the component, child components included.
func (c *Component) Blocks() []Block { return c.blocks }

// Children returns the ordered child components.
func (c *Component) Children() []*Component {
	out := make([]*Component, len(c.children))
	for i, ref := range c.children {
		out[i] = c.doc.components[ref]
	}
	return out
}

// Contains reports whether other is c or lies in c's subtree.
func (c *Component) Contains(other *Component) bool {
	if other == nil || other.doc != c.doc {
		return false
	}
	for ref := other.ref; ref != NoComponent; ref = c.doc.components[ref].parent {
		if ref == c.ref {
			return true
		}
	}
	return false
}

// ContainsBlock reports whether b is reachable from c's content.
func (c *Component) ContainsBlock(b Block) bool {
	if sc, ok := b.(SubComponent); ok {
		return c.Contains(c.doc.Component(sc.Ref))
	}
	found := false
	walkBlocks(c.doc, c.blocks, func(x Block) bool {
		if x == b {
			found = true
		}
		return !found
	})
	return found
}

// BlockContainer is anything that accepts block content: components and list items.
type BlockContainer interface {
	AppendBlock(b Block)
}

var (
	_ BlockContainer = (*Component)(nil)
	_ BlockContainer = (*ListItem)(nil)
)
