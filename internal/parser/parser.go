package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
	"github.com/dgallion1/docingest/internal/scan"
)

// Parser converts raw document bytes into a finished Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes the parsers ForFile returns.
type Options struct {
	RootElement       string              // root element of structured documents
	StreamOptions     []scan.StreamOption // rune stream settings for the lightweight dialect
	FallbackPdftotext bool                // shell out to pdftotext when the PDF library fails
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".xml":      true,
	".dbk":      true,
	".docbook":  true,
	".txt":      true,
	".text":     true,
	".lite":     true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml", ".dbk", ".docbook":
		return &DocBookParser{RootElement: opts.RootElement}, nil
	case ".txt", ".text", ".lite":
		return &LiteParser{StreamOptions: opts.StreamOptions}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// stem is the file name without directory or extension.
func stem(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

func finish(doc *doctree.Document) (*doctree.Document, error) {
	if err := doc.Finish(); err != nil {
		return nil, fmt.Errorf("finish %s: %w", doc.File(), err)
	}
	return doc, nil
}

// outline nests sections by heading level, the way the flat formats express structure.
type outline struct {
	doc   *doctree.Document
	stack []outlineEntry
}

type outlineEntry struct {
	comp  *doctree.Component
	level int
}

func newOutline(doc *doctree.Document) *outline {
	return &outline{doc: doc, stack: []outlineEntry{{comp: doc.Root(), level: 0}}}
}

// heading opens a section at level under the nearest shallower one.
func (o *outline) heading(level int, loc doctree.Location) *doctree.Component {
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].comp
	sec := o.doc.NewComponent(parent, doctree.KindSection, loc)
	o.stack = append(o.stack, outlineEntry{comp: sec, level: level})
	return sec
}

// current is the innermost open component.
func (o *outline) current() *doctree.Component {
	return o.stack[len(o.stack)-1].comp
}

// paragraph appends a paragraph holding text unless text is blank.
func paragraph(into doctree.BlockContainer, text string, loc doctree.Location) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p := doctree.NewParagraph(loc)
	p.Content.AppendText(text)
	p.Content.TrimTrailingSpace()
	into.AppendBlock(p)
}

// fragmentRef returns the id of a same-document link such as "#setup".
func fragmentRef(href string) (string, bool) {
	id, ok := strings.CutPrefix(strings.TrimSpace(href), "#")
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return strings.TrimSpace(id), true
}

// deferRef queues a cross reference to id, resolved when the document is finished.
func deferRef(ic *doctree.InlineContainer, id string, loc doctree.Location, context string) {
	ic.Defer(func(r *doctree.Registry) doctree.Inline {
		return r.ResolveReference(id, &loc, context)
	})
}
