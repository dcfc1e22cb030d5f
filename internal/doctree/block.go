package doctree

// Block is block-level content. The set of implementations is closed.
type Block interface {
	blockNode()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Content *InlineContainer
	Loc     Location
}

// NewParagraph returns an empty paragraph starting at loc.
func NewParagraph(loc Location) *Paragraph {
	return &Paragraph{Content: &InlineContainer{}, Loc: loc}
}

// ListKind distinguishes itemised from ordered lists.
type ListKind int

const (
	ItemisedList ListKind = iota
	OrderedList
)

func (k ListKind) String() string {
	if k == OrderedList {
		return "orderedlist"
	}
	return "itemizedlist"
}

// List is an itemised or ordered list of items.
type List struct {
	Kind  ListKind
	Items []*ListItem
	Loc   Location
}

// NewItem appends an empty item to the list.
func (l *List) NewItem(loc Location) *ListItem {
	it := &ListItem{Loc: loc}
	l.Items = append(l.Items, it)
	return it
}

// ListItem is a block container inside a List.
type ListItem struct {
	Blocks []Block
	Loc    Location
	frozen bool
}

func (it *ListItem) AppendBlock(b Block) {
	if it.frozen {
		panic("doctree: list item is finished and read-only")
	}
	if _, ok := b.(SubComponent); ok {
		panic("doctree: components cannot be nested in list items")
	}
	it.Blocks = append(it.Blocks, b)
}

// ProgramListing is verbatim text; whitespace is preserved.
type ProgramListing struct {
	Text string
	Loc  Location
}

// ErrorBlock is a block-level diagnostic, such as stray text between structural
// elements.
type ErrorBlock struct {
	Message string
	Loc     *Location
}

// UnknownBlock stands in for an element the parser does not understand.
type UnknownBlock struct {
	Name string
	Loc  Location
}

// SubComponent places a child component in its parent's block sequence.
type SubComponent struct {
	Ref ComponentRef
}

func (*Paragraph) blockNode()      {}
func (*List) blockNode()           {}
func (*ProgramListing) blockNode() {}
func (*ErrorBlock) blockNode()     {}
func (*UnknownBlock) blockNode()   {}
func (SubComponent) blockNode()    {}

// BlocksOf returns the blocks of c that have type T, in order.
func BlocksOf[T Block](c *Component) []T {
	var out []T
	for _, b := range c.blocks {
		if t, ok := b.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
