package structured

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/docingest/internal/doctree"
)

// sourceReader remembers the first read failure so it can be told apart from
// malformed markup.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

// Parse decodes r and builds an unfinished document. Content problems become
// diagnostic nodes in the tree; malformed XML is a *doctree.ParseError and a read
// failure a *doctree.IOError.
func Parse(r io.Reader, filename string, opts ...Option) (*doctree.Document, error) {
	src := &sourceReader{r: r}
	dec := xml.NewDecoder(src)
	dec.Strict = true
	dec.Entity = xml.HTMLEntity

	b := NewBuilder(filename, opts...)
	for {
		line, col := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if src.err != nil {
				return nil, doctree.NewIOError("read", filename, src.err)
			}
			return nil, decodeError(filename, line, col, err)
		}
		b.SetLocation(line, col)
		switch t := tok.(type) {
		case xml.StartElement:
			b.StartElement(t.Name, t.Attr)
		case xml.EndElement:
			b.EndElement()
		case xml.CharData:
			b.Characters(string(t))
		}
	}
	if !b.HasRoot() {
		return nil, doctree.NewParseError(Format, doctree.Location{File: filename},
			fmt.Sprintf("no <%s> root element", b.ctx.root))
	}
	return b.Document(), nil
}

func decodeError(filename string, line, col int, err error) error {
	loc := doctree.Location{File: filename, Line: line, Column: col}
	var serr *xml.SyntaxError
	if errors.As(err, &serr) {
		if serr.Line != line {
			loc = doctree.Location{File: filename, Line: serr.Line}
		}
		perr := doctree.NewParseError(Format, loc, serr.Msg)
		perr.Err = err
		return perr
	}
	perr := doctree.NewParseError(Format, loc, err.Error())
	perr.Err = err
	return perr
}
