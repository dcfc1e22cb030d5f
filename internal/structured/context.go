// Package structured builds documents from the XML dialect. A Builder reacts to
// start-element, characters and end-element events with a stack of element
// handlers; Parse feeds it from encoding/xml.
package structured

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
)

// Format names this dialect in errors.
const Format = "docbook"

// Namespace is the DocBook 5 namespace. Elements in it are treated like elements
// without a namespace.
const Namespace = "http://docbook.org/ns/docbook"

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// DefaultRootElement is the root element accepted unless WithRootElement says otherwise.
const DefaultRootElement = "book"

// Option configures a Builder.
type Option func(*options)

type options struct {
	root string
}

// WithRootElement sets the only accepted root element name.
func WithRootElement(name string) Option {
	return func(o *options) {
		if name != "" {
			o.root = name
		}
	}
}

// parseContext is the state shared by all handlers of one parse.
type parseContext struct {
	doc  *doctree.Document
	file string
	root string

	loc     doctree.Location
	element string
	// ids maps explicit ids to where they were first declared.
	ids map[string]doctree.Location
}

// stem is the file name without directory or extension.
func (c *parseContext) stem() string {
	return strings.TrimSuffix(filepath.Base(c.file), filepath.Ext(c.file))
}

// here returns a copy of the current location for a diagnostic node.
func (c *parseContext) here() *doctree.Location {
	loc := c.loc
	return &loc
}

// claim registers an explicit id. It reports the earlier declaration if id is taken.
func (c *parseContext) claim(id string) (doctree.Location, bool) {
	if first, taken := c.ids[id]; taken {
		return first, false
	}
	c.ids[id] = c.loc
	return doctree.Location{}, true
}

func (c *parseContext) strayText(s string) string {
	s = doctree.CollapseWhitespace(s)
	if r := []rune(s); len(r) > 40 {
		s = string(r[:37]) + "..."
	}
	return fmt.Sprintf("unexpected text %q in <%s>", strings.TrimSpace(s), c.element)
}
