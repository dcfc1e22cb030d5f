package structured

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
)

// handlerKind enumerates the element handlers.
type handlerKind int

const (
	kindNoop handlerKind = iota
	kindRoot
	kindComponent
	kindTitle
	kindPara
	kindList
	kindListItem
	kindListing
	kindEmphasis
	kindCode
	kindPhrase
	kindXref
)

var handlerNames = [...]string{
	kindNoop:      "noop",
	kindRoot:      "root",
	kindComponent: "component",
	kindTitle:     "title",
	kindPara:      "para",
	kindList:      "list",
	kindListItem:  "listitem",
	kindListing:   "programlisting",
	kindEmphasis:  "emphasis",
	kindCode:      "code",
	kindPhrase:    "phrase",
	kindXref:      "xref",
}

func (k handlerKind) String() string { return handlerNames[k] }

// handler reacts to the events of one open element. start runs once when the element
// opens; child picks the handler for a nested element; text receives character
// data; finish runs when the element closes.
type handler interface {
	kind() handlerKind
	start(ctx *parseContext, attrs []xml.Attr)
	child(ctx *parseContext, name string) handler
	text(ctx *parseContext, s string)
	finish(ctx *parseContext)
}

var componentKinds = map[string]doctree.ComponentKind{
	"part":     doctree.KindPart,
	"chapter":  doctree.KindChapter,
	"appendix": doctree.KindAppendix,
	"section":  doctree.KindSection,
}

// nesting lists which components may appear directly inside each component kind.
var nesting = map[doctree.ComponentKind][]doctree.ComponentKind{
	doctree.KindDocument: {doctree.KindPart, doctree.KindChapter, doctree.KindAppendix, doctree.KindSection},
	doctree.KindPart:     {doctree.KindChapter, doctree.KindAppendix},
	doctree.KindChapter:  {doctree.KindSection},
	doctree.KindAppendix: {doctree.KindSection},
	doctree.KindSection:  {doctree.KindSection},
}

func canNest(parent, child doctree.ComponentKind) bool {
	for _, k := range nesting[parent] {
		if k == child {
			return true
		}
	}
	return false
}

func attr(attrs []xml.Attr, local string, spaces ...string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local != local {
			continue
		}
		if a.Name.Space == "" {
			return a.Value, true
		}
		for _, sp := range spaces {
			if a.Name.Space == sp {
				return a.Value, true
			}
		}
	}
	return "", false
}

// noopHandler swallows an element already reported as an error, with everything
// inside it.
type noopHandler struct{}

func (noopHandler) kind() handlerKind                   { return kindNoop }
func (noopHandler) start(*parseContext, []xml.Attr)     {}
func (noopHandler) child(*parseContext, string) handler { return noopHandler{} }
func (noopHandler) text(*parseContext, string)          {}
func (noopHandler) finish(*parseContext)                {}

// blocks reports unmatched elements and stray text as diagnostic blocks in into.
type blocks struct {
	into doctree.BlockContainer
}

func (b *blocks) unknown(ctx *parseContext, name string) handler {
	b.into.AppendBlock(&doctree.UnknownBlock{Name: name, Loc: ctx.loc})
	return noopHandler{}
}

func (b *blocks) text(ctx *parseContext, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	b.into.AppendBlock(&doctree.ErrorBlock{Message: ctx.strayText(s), Loc: ctx.here()})
}

// blockChild returns the handler for a block element inside into, or nil.
func blockChild(into doctree.BlockContainer, name string) handler {
	switch name {
	case "para", "simpara":
		return &paraHandler{into: into}
	case "itemizedlist":
		return &listHandler{blocks: blocks{into: into}, listKind: doctree.ItemisedList}
	case "orderedlist":
		return &listHandler{blocks: blocks{into: into}, listKind: doctree.OrderedList}
	case "programlisting", "screen":
		return &listingHandler{into: into}
	}
	return nil
}

// rootHandler sits below the root element and accepts only the configured one.
type rootHandler struct {
	blocks
	seen bool
}

func (h *rootHandler) kind() handlerKind                     { return kindRoot }
func (h *rootHandler) start(ctx *parseContext, _ []xml.Attr) { h.into = ctx.doc.Root() }
func (h *rootHandler) finish(*parseContext)                  {}

func (h *rootHandler) child(ctx *parseContext, name string) handler {
	if name != ctx.root || h.seen {
		return h.unknown(ctx, name)
	}
	h.seen = true
	return &componentHandler{comp: ctx.doc.Root()}
}

// componentHandler builds one component. A nil comp is created in start under parent.
type componentHandler struct {
	blocks
	parent   *doctree.Component
	compKind doctree.ComponentKind
	comp     *doctree.Component
	titled   bool
}

func (h *componentHandler) kind() handlerKind { return kindComponent }

func (h *componentHandler) start(ctx *parseContext, attrs []xml.Attr) {
	if h.comp == nil {
		h.comp = ctx.doc.NewComponent(h.parent, h.compKind, ctx.loc)
	}
	h.into = h.comp
	id, _ := attr(attrs, "id", xmlNamespace)
	if id = strings.TrimSpace(id); id == "" {
		return
	}
	if first, ok := ctx.claim(id); !ok {
		h.comp.AppendBlock(&doctree.ErrorBlock{
			Message: fmt.Sprintf("duplicate id %q, first declared at %s", id, first),
			Loc:     ctx.here(),
		})
		return
	}
	h.comp.SetID(id)
}

func (h *componentHandler) child(ctx *parseContext, name string) handler {
	if name == "title" {
		if h.titled {
			h.comp.AppendBlock(&doctree.ErrorBlock{Message: "duplicate <title>", Loc: ctx.here()})
			return noopHandler{}
		}
		h.titled = true
		return &titleHandler{content: h.comp.Title()}
	}
	if k, ok := componentKinds[name]; ok && canNest(h.comp.Kind(), k) {
		return &componentHandler{parent: h.comp, compKind: k}
	}
	if c := blockChild(h.comp, name); c != nil {
		return c
	}
	return h.unknown(ctx, name)
}

func (h *componentHandler) finish(ctx *parseContext) {
	if h.comp == ctx.doc.Root() && !h.titled {
		h.comp.Title().AppendText(ctx.stem())
	}
}

// titleHandler fills a component title.
type titleHandler struct {
	content *doctree.InlineContainer
}

func (h *titleHandler) kind() handlerKind               { return kindTitle }
func (h *titleHandler) start(*parseContext, []xml.Attr) {}
func (h *titleHandler) text(_ *parseContext, s string)  { h.content.AppendText(s) }
func (h *titleHandler) finish(*parseContext)            { h.content.TrimTrailingSpace() }

func (h *titleHandler) child(ctx *parseContext, name string) handler {
	return inlineChild(ctx, h.content, name)
}

type paraHandler struct {
	into doctree.BlockContainer
	para *doctree.Paragraph
}

func (h *paraHandler) kind() handlerKind              { return kindPara }
func (h *paraHandler) text(_ *parseContext, s string) { h.para.Content.AppendText(s) }
func (h *paraHandler) finish(*parseContext)           { h.para.Content.TrimTrailingSpace() }

func (h *paraHandler) start(ctx *parseContext, _ []xml.Attr) {
	h.para = doctree.NewParagraph(ctx.loc)
	h.into.AppendBlock(h.para)
}

func (h *paraHandler) child(ctx *parseContext, name string) handler {
	return inlineChild(ctx, h.para.Content, name)
}

// listHandler builds a list. Anything but list items is reported next to the list.
type listHandler struct {
	blocks
	listKind doctree.ListKind
	list     *doctree.List
}

func (h *listHandler) kind() handlerKind    { return kindList }
func (h *listHandler) finish(*parseContext) {}

func (h *listHandler) start(ctx *parseContext, _ []xml.Attr) {
	h.list = &doctree.List{Kind: h.listKind, Loc: ctx.loc}
	h.into.AppendBlock(h.list)
}

func (h *listHandler) child(ctx *parseContext, name string) handler {
	if name == "listitem" {
		return &listItemHandler{list: h.list}
	}
	return h.unknown(ctx, name)
}

// listItemHandler fills one item of its owning list.
type listItemHandler struct {
	blocks
	list *doctree.List
}

func (h *listItemHandler) kind() handlerKind    { return kindListItem }
func (h *listItemHandler) finish(*parseContext) {}

func (h *listItemHandler) start(ctx *parseContext, _ []xml.Attr) {
	h.into = h.list.NewItem(ctx.loc)
}

func (h *listItemHandler) child(ctx *parseContext, name string) handler {
	if c := blockChild(h.into, name); c != nil {
		return c
	}
	return h.unknown(ctx, name)
}

// listingHandler keeps its text verbatim.
type listingHandler struct {
	into    doctree.BlockContainer
	listing *doctree.ProgramListing
	sb      strings.Builder
}

func (h *listingHandler) kind() handlerKind              { return kindListing }
func (h *listingHandler) text(_ *parseContext, s string) { h.sb.WriteString(s) }

func (h *listingHandler) start(ctx *parseContext, _ []xml.Attr) {
	h.listing = &doctree.ProgramListing{Loc: ctx.loc}
	h.into.AppendBlock(h.listing)
}

func (h *listingHandler) child(ctx *parseContext, name string) handler {
	h.into.AppendBlock(&doctree.UnknownBlock{Name: name, Loc: ctx.loc})
	return noopHandler{}
}

func (h *listingHandler) finish(*parseContext) {
	h.listing.Text = strings.TrimPrefix(h.sb.String(), "\n")
}

// inlineChild returns the handler for an inline element inside ic. Unknown elements
// leave an error inline in their place.
func inlineChild(ctx *parseContext, ic *doctree.InlineContainer, name string) handler {
	switch name {
	case "emphasis":
		return &emphasisHandler{parent: ic}
	case "code":
		return &codeHandler{into: ic}
	case "literal":
		return &codeHandler{into: ic, literal: true}
	case "phrase", "quote":
		return &phraseHandler{into: ic}
	case "xref":
		return &xrefHandler{into: ic}
	}
	ic.Append(doctree.Error{Message: fmt.Sprintf("unknown element <%s>", name), Loc: ctx.here()})
	return noopHandler{}
}

type emphasisHandler struct {
	parent *doctree.InlineContainer
	em     *doctree.Emphasis
}

func (h *emphasisHandler) kind() handlerKind              { return kindEmphasis }
func (h *emphasisHandler) text(_ *parseContext, s string) { h.em.Content.AppendText(s) }
func (h *emphasisHandler) finish(*parseContext)           {}

func (h *emphasisHandler) start(*parseContext, []xml.Attr) {
	h.em = &doctree.Emphasis{Content: &doctree.InlineContainer{}}
	h.parent.Append(h.em)
}

func (h *emphasisHandler) child(ctx *parseContext, name string) handler {
	return inlineChild(ctx, h.em.Content, name)
}

// codeHandler collects raw text for a code or literal inline.
type codeHandler struct {
	into    *doctree.InlineContainer
	literal bool
	sb      strings.Builder
}

func (h *codeHandler) kind() handlerKind               { return kindCode }
func (h *codeHandler) start(*parseContext, []xml.Attr) {}
func (h *codeHandler) text(_ *parseContext, s string)  { h.sb.WriteString(s) }

func (h *codeHandler) child(ctx *parseContext, name string) handler {
	h.into.Append(doctree.Error{Message: fmt.Sprintf("unexpected element <%s> in <%s>", name, ctx.element), Loc: ctx.here()})
	return noopHandler{}
}

func (h *codeHandler) finish(*parseContext) {
	if h.literal {
		h.into.Append(doctree.Literal{Value: h.sb.String()})
		return
	}
	h.into.Append(doctree.Code{Value: h.sb.String()})
}

// phraseHandler passes its text straight through to the enclosing container.
type phraseHandler struct {
	into *doctree.InlineContainer
}

func (h *phraseHandler) kind() handlerKind               { return kindPhrase }
func (h *phraseHandler) start(*parseContext, []xml.Attr) {}
func (h *phraseHandler) text(_ *parseContext, s string)  { h.into.AppendText(s) }
func (h *phraseHandler) finish(*parseContext)            {}

func (h *phraseHandler) child(ctx *parseContext, name string) handler {
	return inlineChild(ctx, h.into, name)
}

// xrefHandler defers a cross reference until the document is finished.
type xrefHandler struct {
	into *doctree.InlineContainer
}

func (h *xrefHandler) kind() handlerKind    { return kindXref }
func (h *xrefHandler) finish(*parseContext) {}

func (h *xrefHandler) start(ctx *parseContext, attrs []xml.Attr) {
	linkend, _ := attr(attrs, "linkend")
	linkend = strings.TrimSpace(linkend)
	if linkend == "" {
		h.into.Append(doctree.Error{
			Message: fmt.Sprintf("<%s> without linkend", ctx.element),
			Loc:     ctx.here(),
		})
		return
	}
	loc, element := ctx.here(), ctx.element
	h.into.Defer(func(r *doctree.Registry) doctree.Inline {
		return r.ResolveReference(linkend, loc, element)
	})
}

func (h *xrefHandler) child(ctx *parseContext, name string) handler {
	h.into.Append(doctree.Error{Message: fmt.Sprintf("unexpected element <%s> in <%s>", name, ctx.element), Loc: ctx.here()})
	return noopHandler{}
}

func (h *xrefHandler) text(ctx *parseContext, s string) {
	if strings.TrimSpace(s) != "" {
		h.into.Append(doctree.Error{Message: ctx.strayText(s), Loc: ctx.here()})
	}
}
