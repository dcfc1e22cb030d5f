package doctree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFinished is returned by a second call to Finish.
var ErrFinished = errors.New("doctree: document already finished")

// Registry is the id table handed to deferred resolvers.
type Registry struct {
	doc *Document
}

// Lookup returns the component registered under id.
func (r *Registry) Lookup(id string) (*Component, bool) {
	return r.doc.Lookup(id)
}

// ResolveReference is the usual resolver body: a cross reference to id, or an
// Error carrying loc when id is not registered.
func (r *Registry) ResolveReference(id string, loc *Location, context string) Inline {
	target, ok := r.Lookup(id)
	if !ok {
		msg := fmt.Sprintf("unresolved cross reference %q", id)
		if context != "" {
			msg += " in <" + context + ">"
		}
		return Error{Message: msg, Ref: id, Loc: loc}
	}
	return CrossReference{
		Linkend: id,
		Target:  target.ref,
		Label:   strings.TrimSpace(target.title.Text()),
	}
}

// Finish assigns ids to every component and then runs every deferred resolver.
// References inside titles are resolved first, all against the unresolved titles,
// so labels do not depend on resolution order. References in body content see the
// final titles. Afterwards the document is read-only.
func (d *Document) Finish() error {
	if d.finished {
		return ErrFinished
	}
	d.assignIDs()
	reg := &Registry{doc: d}

	var titles []*InlineContainer
	var results [][]Inline
	walkContainers(d, true, func(ic *InlineContainer) {
		titles = append(titles, ic)
		results = append(results, runPending(ic, reg))
	})
	for i, ic := range titles {
		ic.resolve(results[i])
		ic.frozen = true
	}
	walkContainers(d, false, func(ic *InlineContainer) {
		ic.resolve(runPending(ic, reg))
		ic.frozen = true
	})
	Walk(d.Root(), func(b Block) bool {
		if l, ok := b.(*List); ok {
			for _, item := range l.Items {
				item.frozen = true
			}
		}
		return true
	})
	d.finished = true
	return nil
}

func runPending(ic *InlineContainer, reg *Registry) []Inline {
	out := make([]Inline, len(ic.pending))
	for k, i := range ic.pending {
		out[k] = ic.items[i].(Pending).Resolve(reg)
	}
	return out
}

// order returns the components in document (pre-order) traversal order.
func (d *Document) order() []*Component {
	out := make([]*Component, 0, len(d.components))
	var visit func(c *Component)
	visit = func(c *Component) {
		out = append(out, c)
		for _, ref := range c.children {
			visit(d.components[ref])
		}
	}
	visit(d.Root())
	return out
}

func (d *Document) assignIDs() {
	d.ids = make(map[string]ComponentRef, len(d.components))
	order := d.order()

	// Explicit ids are reserved before any automatic id is derived.
	for _, c := range order {
		if c.id == "" {
			continue
		}
		c.id = d.reserve(c.id, c.ref)
	}

	seen := make(map[ComponentKind]int)
	candidates := make([]string, len(order))
	for i, c := range order {
		seen[c.kind]++
		if c.id != "" {
			continue
		}
		candidates[i] = IDCandidate(c.title.Text(), c.kind, seen[c.kind])
	}
	for i, c := range order {
		if c.id != "" {
			continue
		}
		c.id = d.reserve(candidates[i], c.ref)
	}
}

// reserve registers the first unused id among base, base_1, base_2, ...
func (d *Document) reserve(base string, ref ComponentRef) string {
	id := base
	for n := 1; ; n++ {
		if _, taken := d.ids[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
	d.ids[id] = ref
	return id
}

// IDCandidate derives an automatic id: the lower-cased title with whitespace runs
// replaced by underscores, or kind name plus occurrence for untitled components.
func IDCandidate(title string, kind ComponentKind, occurrence int) string {
	if fields := strings.Fields(strings.ToLower(title)); len(fields) > 0 {
		return strings.Join(fields, "_")
	}
	return fmt.Sprintf("%s%d", kind, occurrence)
}
