package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docingest/internal/doctree"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available. Each page becomes a section.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docingest-pdf-*.pdf")
	if err != nil {
		return nil, doctree.NewIOError("create temp file for", filename, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, doctree.NewIOError("read", filename, err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		perr := doctree.NewParseError("pdf", doctree.Location{File: filename}, fmt.Sprintf("extract pdf text: %v", err))
		perr.Err = err
		return nil, perr
	}

	doc := doctree.New(filename, stem(filename))
	buildPages(doc, splitPages(text))
	return finish(doc)
}

// buildPages adds one section per non-blank page, titled "Page N", with paragraphs
// split on blank lines. The page number is recorded as the line of its location.
func buildPages(doc *doctree.Document, pages []string) {
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		loc := doctree.Location{File: doc.File(), Line: i + 1}
		sec := doc.NewComponent(doc.Root(), doctree.KindSection, loc)
		sec.Title().AppendText(fmt.Sprintf("Page %d", i+1))
		sec.SetID(fmt.Sprintf("page-%d", i+1))
		for _, para := range splitParagraphs(page) {
			paragraph(sec, para, loc)
		}
	}
}

func splitParagraphs(text string) []string {
	var out []string
	var cur []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, "\n"))
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, "\n"))
	}
	return out
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
