package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docingest/internal/doctree"
)

// DOCXParser handles .docx files. Heading styles become nested sections and list
// paragraphs are gathered into itemised lists.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docingest-docx-*.docx")
	if err != nil {
		return nil, doctree.NewIOError("create temp file for", filename, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, doctree.NewIOError("read", filename, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, doctree.NewIOError("seek temp file for", filename, err)
	}

	d, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		perr := doctree.NewParseError("docx", doctree.Location{File: filename}, fmt.Sprintf("parse docx: %v", err))
		perr.Err = err
		return nil, perr
	}

	doc := doctree.New(filename, stem(filename))
	o := newOutline(doc)
	var list *doctree.List
	for i, item := range d.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		// Paragraph index stands in for a line number.
		loc := doctree.Location{File: filename, Line: i + 1}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		// Check if paragraph has a heading style.
		if level := docxHeadingLevel(para); level > 0 {
			list = nil
			sec := o.heading(level, loc)
			sec.Title().AppendText(text)
			continue
		}
		if docxIsListItem(para) {
			if list == nil {
				list = &doctree.List{Kind: doctree.ItemisedList, Loc: loc}
				o.current().AppendBlock(list)
			}
			paragraph(list.NewItem(loc), text, loc)
			continue
		}
		list = nil
		paragraph(o.current(), text, loc)
	}
	return finish(doc)
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := docxStyle(para)
	switch {
	case strings.EqualFold(style, "Title"):
		return 1
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	case strings.EqualFold(style, "Heading4") || strings.EqualFold(style, "heading 4"):
		return 4
	case strings.EqualFold(style, "Heading5") || strings.EqualFold(style, "heading 5"):
		return 5
	case strings.EqualFold(style, "Heading6") || strings.EqualFold(style, "heading 6"):
		return 6
	}
	return 0
}

func docxIsListItem(para *docx.Paragraph) bool {
	style := strings.ToLower(docxStyle(para))
	return strings.HasPrefix(style, "listparagraph") || strings.HasPrefix(style, "list paragraph") ||
		strings.HasPrefix(style, "listbullet") || strings.HasPrefix(style, "list bullet")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
