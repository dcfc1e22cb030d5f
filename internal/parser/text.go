package parser

import (
	"io"

	"github.com/dgallion1/docingest/internal/doctree"
	"github.com/dgallion1/docingest/internal/lite"
	"github.com/dgallion1/docingest/internal/scan"
	"github.com/dgallion1/docingest/internal/structured"
)

// LiteParser handles the lightweight text dialect.
type LiteParser struct {
	StreamOptions []scan.StreamOption
}

func (p *LiteParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	doc, err := lite.Parse(r, filename, lite.WithStreamOptions(p.StreamOptions...))
	if err != nil {
		return nil, err
	}
	return finish(doc)
}

// DocBookParser handles the structured XML dialect.
type DocBookParser struct {
	RootElement string
}

func (p *DocBookParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	doc, err := structured.Parse(r, filename, structured.WithRootElement(p.RootElement))
	if err != nil {
		return nil, err
	}
	return finish(doc)
}
