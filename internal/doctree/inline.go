package doctree

import (
	"strings"
	"unicode"
)

// Inline is inline content. The set of implementations is closed; Pending only
// exists between parsing and Finish.
type Inline interface {
	inlineNode()
	Text() string
}

// Text is ordinary running text, already whitespace-normalised.
type Text struct{ Value string }

// Code is a code span; its text is kept verbatim.
type Code struct{ Value string }

// Literal is verbatim text such as a file name or option.
type Literal struct{ Value string }

// Emphasis wraps nested inline content.
type Emphasis struct{ Content *InlineContainer }

// CrossReference points at a resolved component. Label is the target's title text
// at resolution time.
type CrossReference struct {
	Linkend string
	Target  ComponentRef
	Label   string
}

// Error is an inline diagnostic. Ref names the offending identifier for unresolved
// cross references.
type Error struct {
	Message string
	Ref     string
	Loc     *Location
}

// Resolver turns a deferred reference into its final inline once every id in the
// document is known.
type Resolver func(r *Registry) Inline

// Pending is a placeholder for a deferred cross reference.
type Pending struct {
	Resolve Resolver
}

func (Text) inlineNode()           {}
func (Code) inlineNode()           {}
func (Literal) inlineNode()        {}
func (*Emphasis) inlineNode()      {}
func (CrossReference) inlineNode() {}
func (Error) inlineNode()          {}
func (Pending) inlineNode()        {}

func (t Text) Text() string           { return t.Value }
func (c Code) Text() string           { return c.Value }
func (l Literal) Text() string        { return l.Value }
func (e *Emphasis) Text() string      { return e.Content.Text() }
func (x CrossReference) Text() string { return x.Label }
func (e Error) Text() string          { return "" }
func (Pending) Text() string          { return "" }

// InlineContainer is an ordered sequence of inlines. Text appended to it has its
// whitespace collapsed to single spaces, and a container never starts with one.
// Separators are collapsed across emphasis boundaries and across inlines that render
// no text.
type InlineContainer struct {
	items   []Inline
	pending []int
	// outer is the container holding the emphasis this container belongs to, and
	// outerAt that emphasis' index in it.
	outer   *InlineContainer
	outerAt int
	frozen  bool
}

func (ic *InlineContainer) mutable() {
	if ic.frozen {
		panic("doctree: inline container is finished and read-only")
	}
}

// Inlines returns the container's content.
func (ic *InlineContainer) Inlines() []Inline { return ic.items }

// Len returns the number of inlines.
func (ic *InlineContainer) Len() int { return len(ic.items) }

// IsEmpty reports whether the container holds no inline content.
func (ic *InlineContainer) IsEmpty() bool { return len(ic.items) == 0 }

// Text flattens the container to plain text.
func (ic *InlineContainer) Text() string {
	var sb strings.Builder
	for _, in := range ic.items {
		sb.WriteString(in.Text())
	}
	return sb.String()
}

// AppendText appends s after collapsing its whitespace. Adjacent text merges into a
// single Text node.
func (ic *InlineContainer) AppendText(s string) {
	ic.mutable()
	out, _ := collapse(s, ic.spacedAt(len(ic.items)))
	if out == "" {
		return
	}
	if n := len(ic.items); n > 0 {
		if t, ok := ic.items[n-1].(Text); ok {
			ic.items[n-1] = Text{Value: t.Value + out}
			return
		}
	}
	ic.items = append(ic.items, Text{Value: out})
}

// Append adds a non-text inline. Text values must go through AppendText. Emphasis
// content may still be filled after the emphasis has been appended.
func (ic *InlineContainer) Append(in Inline) {
	ic.mutable()
	switch in := in.(type) {
	case Text:
		ic.AppendText(in.Value)
		return
	case *Emphasis:
		in.Content.outer = ic
		in.Content.outerAt = len(ic.items)
	case Pending:
		ic.pending = append(ic.pending, len(ic.items))
	}
	ic.items = append(ic.items, in)
}

// spacedAt reports whether the text rendered before items[n] ends in a separator, or
// nothing has been rendered yet. Inlines with no text are transparent.
func (ic *InlineContainer) spacedAt(n int) bool {
	for i := n - 1; i >= 0; i-- {
		switch in := ic.items[i].(type) {
		case Text:
			return strings.HasSuffix(in.Value, " ")
		case *Emphasis:
			return in.Content.spacedAt(len(in.Content.items))
		case Error:
			continue
		default:
			return false
		}
	}
	if ic.outer != nil {
		return ic.outer.spacedAt(ic.outerAt)
	}
	return true
}

// Defer queues r to run during Finish; its result replaces the placeholder in place.
func (ic *InlineContainer) Defer(r Resolver) {
	ic.Append(Pending{Resolve: r})
}

// TrimTrailingSpace drops a single trailing separator left by the last text append.
// Trailing inlines with no text are skipped over, and a trailing emphasis is trimmed
// from the inside.
func (ic *InlineContainer) TrimTrailingSpace() {
	ic.mutable()
	n := len(ic.items) - 1
	for n >= 0 {
		if _, ok := ic.items[n].(Error); !ok {
			break
		}
		n--
	}
	if n < 0 {
		return
	}
	if e, ok := ic.items[n].(*Emphasis); ok {
		e.Content.TrimTrailingSpace()
		return
	}
	t, ok := ic.items[n].(Text)
	if !ok || !strings.HasSuffix(t.Value, " ") {
		return
	}
	t.Value = strings.TrimSuffix(t.Value, " ")
	if t.Value == "" {
		ic.removeAt(n)
	} else {
		ic.items[n] = t
	}
}

// removeAt deletes items[i], keeping pending indices in step.
func (ic *InlineContainer) removeAt(i int) {
	ic.items = append(ic.items[:i], ic.items[i+1:]...)
	for k, p := range ic.pending {
		if p > i {
			ic.pending[k] = p - 1
		}
	}
	for _, in := range ic.items[i:] {
		if e, ok := in.(*Emphasis); ok {
			e.Content.outerAt--
		}
	}
}

// resolve replaces every Pending with its resolver's result. Results that render no
// text must not leave two separators side by side, so a separator right after one is
// dropped when the text before it already ends in one.
func (ic *InlineContainer) resolve(results []Inline) {
	for k, i := range ic.pending {
		ic.items[i] = results[k]
	}
	pending := ic.pending
	ic.pending = nil
	for k := len(pending) - 1; k >= 0; k-- {
		i := pending[k]
		if ic.items[i].Text() != "" || i+1 >= len(ic.items) {
			continue
		}
		t, ok := ic.items[i+1].(Text)
		if !ok || !strings.HasPrefix(t.Value, " ") || !ic.spacedAt(i) {
			continue
		}
		t.Value = t.Value[1:]
		if t.Value == "" {
			ic.removeAt(i + 1)
		} else {
			ic.items[i+1] = t
		}
	}
}

// CollapseWhitespace replaces every run of whitespace in s with a single space and
// drops leading whitespace. Applying it twice yields the same result.
func CollapseWhitespace(s string) string {
	out, _ := collapse(s, true)
	return out
}

// collapse normalises s. spaced reports whether the text before s already ended in
// a separator (or is the start of a container); it is returned updated.
func collapse(s string, spaced bool) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !spaced {
				sb.WriteByte(' ')
				spaced = true
			}
			continue
		}
		sb.WriteRune(r)
		spaced = false
	}
	return sb.String(), spaced
}
