package doctree

// Walk visits every block reachable from c in document order, descending into list
// items and child components. Returning false from fn stops the walk.
func Walk(c *Component, fn func(b Block) bool) {
	walkBlocks(c.doc, c.blocks, fn)
}

func walkBlocks(d *Document, blocks []Block, fn func(b Block) bool) bool {
	for _, b := range blocks {
		if !fn(b) {
			return false
		}
		switch b := b.(type) {
		case *List:
			for _, it := range b.Items {
				if !walkBlocks(d, it.Blocks, fn) {
					return false
				}
			}
		case SubComponent:
			if !walkBlocks(d, d.components[b.Ref].blocks, fn) {
				return false
			}
		}
	}
	return true
}

// walkContainers visits inline containers in document order, including emphasis
// content: component titles when titles is set, paragraph content otherwise.
func walkContainers(d *Document, titles bool, fn func(ic *InlineContainer)) {
	var inlines func(ic *InlineContainer)
	inlines = func(ic *InlineContainer) {
		fn(ic)
		for _, in := range ic.items {
			if e, ok := in.(*Emphasis); ok {
				inlines(e.Content)
			}
		}
	}
	for _, c := range d.order() {
		if titles {
			inlines(c.title)
			continue
		}
		for _, b := range c.blocks {
			walkBlocks(d, []Block{b}, func(b Block) bool {
				if _, ok := b.(SubComponent); ok {
					return false
				}
				if p, ok := b.(*Paragraph); ok {
					inlines(p.Content)
				}
				return true
			})
		}
	}
}

// Diagnostic is one visible problem recorded in the tree.
type Diagnostic struct {
	Message string
	Loc     *Location
}

// Diagnostics lists every diagnostic node of a document in document order.
func Diagnostics(d *Document) []Diagnostic {
	var out []Diagnostic
	var inlines func(ic *InlineContainer)
	inlines = func(ic *InlineContainer) {
		for _, in := range ic.items {
			switch in := in.(type) {
			case Error:
				out = append(out, Diagnostic{Message: in.Message, Loc: in.Loc})
			case *Emphasis:
				inlines(in.Content)
			}
		}
	}
	for _, c := range d.order() {
		inlines(c.title)
		for _, b := range c.blocks {
			walkBlocks(d, []Block{b}, func(b Block) bool {
				switch b := b.(type) {
				case SubComponent:
					return false
				case *Paragraph:
					inlines(b.Content)
				case *ErrorBlock:
					out = append(out, Diagnostic{Message: b.Message, Loc: b.Loc})
				case *UnknownBlock:
					loc := b.Loc
					out = append(out, Diagnostic{Message: "unknown element <" + b.Name + ">", Loc: &loc})
				}
				return true
			})
		}
	}
	return out
}
