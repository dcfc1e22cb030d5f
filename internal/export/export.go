// Package export turns a finished document tree into a plain serialisable view.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/dgallion1/docingest/internal/doctree"
)

// Node is one element of the exported tree. Only the fields meaningful for Kind are set.
type Node struct {
	Kind     string            `json:"kind" yaml:"kind"`
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	Name     string            `json:"name,omitempty" yaml:"name,omitempty"`
	Text     string            `json:"text,omitempty" yaml:"text,omitempty"`
	Linkend  string            `json:"linkend,omitempty" yaml:"linkend,omitempty"`
	Message  string            `json:"message,omitempty" yaml:"message,omitempty"`
	Location *doctree.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Children []Node            `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tree exports doc starting at its root component.
func Tree(doc *doctree.Document) Node {
	return component(doc, doc.Root())
}

// Marshal renders the exported tree as "json" or "yaml".
func Marshal(doc *doctree.Document, format string) ([]byte, error) {
	tree := Tree(doc)
	switch format {
	case "json":
		return json.MarshalIndent(tree, "", "  ")
	case "yaml":
		return yaml.Marshal(tree)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func component(doc *doctree.Document, c *doctree.Component) Node {
	loc := c.Location()
	n := Node{
		Kind:     c.Kind().String(),
		ID:       c.ID(),
		Title:    c.Title().Text(),
		Location: &loc,
	}
	if !c.Title().IsEmpty() {
		n.Children = append(n.Children, Node{Kind: "title", Children: inlines(c.Title())})
	}
	for _, b := range c.Blocks() {
		n.Children = append(n.Children, block(doc, b))
	}
	return n
}

func block(doc *doctree.Document, b doctree.Block) Node {
	switch b := b.(type) {
	case *doctree.Paragraph:
		loc := b.Loc
		return Node{Kind: "para", Location: &loc, Children: inlines(b.Content)}
	case *doctree.List:
		loc := b.Loc
		n := Node{Kind: b.Kind.String(), Location: &loc}
		for _, it := range b.Items {
			itemLoc := it.Loc
			item := Node{Kind: "listitem", Location: &itemLoc}
			for _, ib := range it.Blocks {
				item.Children = append(item.Children, block(doc, ib))
			}
			n.Children = append(n.Children, item)
		}
		return n
	case *doctree.ProgramListing:
		loc := b.Loc
		return Node{Kind: "programlisting", Text: b.Text, Location: &loc}
	case *doctree.ErrorBlock:
		return Node{Kind: "error", Message: b.Message, Location: b.Loc}
	case *doctree.UnknownBlock:
		loc := b.Loc
		return Node{Kind: "unknown", Name: b.Name, Location: &loc}
	case doctree.SubComponent:
		return component(doc, doc.Component(b.Ref))
	}
	panic(fmt.Sprintf("export: unexpected block %T", b))
}

func inlines(ic *doctree.InlineContainer) []Node {
	var out []Node
	for _, in := range ic.Inlines() {
		out = append(out, inline(in))
	}
	return out
}

func inline(in doctree.Inline) Node {
	switch in := in.(type) {
	case doctree.Text:
		return Node{Kind: "text", Text: in.Value}
	case doctree.Code:
		return Node{Kind: "code", Text: in.Value}
	case doctree.Literal:
		return Node{Kind: "literal", Text: in.Value}
	case *doctree.Emphasis:
		return Node{Kind: "emphasis", Children: inlines(in.Content)}
	case doctree.CrossReference:
		return Node{Kind: "xref", Linkend: in.Linkend, Text: in.Label}
	case doctree.Error:
		return Node{Kind: "error", Message: in.Message, Linkend: in.Ref, Location: in.Loc}
	}
	// Pending never survives Finish.
	panic(fmt.Sprintf("export: unexpected inline %T", in))
}
