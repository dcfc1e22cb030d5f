package chunker

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/docingest/internal/doctree"
)

// section adds a titled section holding one paragraph per text.
func section(doc *doctree.Document, parent *doctree.Component, title string, texts ...string) *doctree.Component {
	loc := doctree.Location{File: doc.File(), Line: doc.Len() + 1, Column: 1}
	c := doc.NewComponent(parent, doctree.KindSection, loc)
	c.Title().AppendText(title)
	for _, text := range texts {
		p := doctree.NewParagraph(loc)
		p.Content.AppendText(text)
		c.AppendBlock(p)
	}
	return c
}

func finished(t *testing.T, doc *doctree.Document) *doctree.Document {
	t.Helper()
	if err := doc.Finish(); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestChunkDocument_SmallDocumentFitsOneChunk(t *testing.T) {
	doc := doctree.New("small.txt", "Small")
	section(doc, doc.Root(), "Section", strings.Repeat("word ", 200)) // ~266 tokens
	finished(t, doc)

	cfg := Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     50,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if !strings.Contains(chunks[0].Text, "word") {
		t.Errorf("expected chunk text to contain 'word', got %q", chunks[0].Text)
	}
	if chunks[0].ComponentID != "section" {
		t.Errorf("expected component id %q, got %q", "section", chunks[0].ComponentID)
	}
	if chunks[0].Loc.File != "small.txt" {
		t.Errorf("expected location in %q, got %v", "small.txt", chunks[0].Loc)
	}
}

func TestChunkDocument_LargeSectionRequiresSplitting(t *testing.T) {
	// ~3000 words -> ~3990 tokens at 1.33 tokens/word.
	largeText := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 300)

	doc := doctree.New("large.txt", "Large")
	section(doc, doc.Root(), "Big Section", largeText)
	finished(t, doc)

	cfg := Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		MinChunk:     10,
	}
	chunks := ChunkDocument(doc, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks for large text, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		// Sentence boundaries allow slight overflow.
		if c.Tokens > cfg.ChunkSize*2 {
			t.Errorf("chunk %d: %d tokens exceeds 2x target %d", i, c.Tokens, cfg.ChunkSize)
		}
		if c.ComponentID != "big_section" {
			t.Errorf("chunk %d: expected component id %q, got %q", i, "big_section", c.ComponentID)
		}
	}
}

func TestChunkDocument_BreadcrumbPropagation(t *testing.T) {
	doc := doctree.New("guide.xml", "Guide")
	ch := section(doc, doc.Root(), "Chapter 1")
	sec := section(doc, ch, "Section 1.1")
	section(doc, sec, "Subsection 1.1.1", strings.Repeat("content ", 100))
	finished(t, doc)

	chunks := ChunkDocument(doc, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 10})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := []string{"Chapter 1", "Section 1.1", "Subsection 1.1.1"}
	if diff := cmp.Diff(want, chunks[0].Breadcrumb); diff != "" {
		t.Errorf("breadcrumb mismatch (-want +got):\n%s", diff)
	}
}

func TestChunkDocument_BreadcrumbIsolation(t *testing.T) {
	doc := doctree.New("iso.txt", "Root")
	section(doc, doc.Root(), "A", strings.Repeat("alpha ", 100))
	section(doc, doc.Root(), "B", strings.Repeat("beta ", 100))
	finished(t, doc)

	chunks := ChunkDocument(doc, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 10})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if diff := cmp.Diff([]string{"A"}, chunks[0].Breadcrumb); diff != "" {
		t.Errorf("chunk 0 breadcrumb mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B"}, chunks[1].Breadcrumb); diff != "" {
		t.Errorf("chunk 1 breadcrumb mismatch (-want +got):\n%s", diff)
	}
}

func TestChunkDocument_MinChunkFiltering(t *testing.T) {
	doc := doctree.New("tiny.txt", "Tiny")
	section(doc, doc.Root(), "Tiny", "hi")
	finished(t, doc)

	chunks := ChunkDocument(doc, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 100})
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks (below MinChunk), got %d", len(chunks))
	}
}

func TestChunkDocument_EmptyDocument(t *testing.T) {
	doc := finished(t, doctree.New("empty.txt", "Empty"))
	if chunks := ChunkDocument(doc, DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestChunkDocument_DefaultConfigFallback(t *testing.T) {
	doc := doctree.New("d.txt", "Default")
	section(doc, doc.Root(), "S", strings.Repeat("word ", 200))
	finished(t, doc)

	// Zero config falls back to defaults.
	if chunks := ChunkDocument(doc, Config{}); len(chunks) < 1 {
		t.Errorf("expected at least 1 chunk with zero config (defaults applied), got %d", len(chunks))
	}
}

func TestChunkDocument_ComponentWithNoText(t *testing.T) {
	doc := doctree.New("parent.txt", "Root")
	parent := section(doc, doc.Root(), "Parent")
	section(doc, parent, "Child", strings.Repeat("text ", 100))
	finished(t, doc)

	chunks := ChunkDocument(doc, Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 10})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if diff := cmp.Diff([]string{"Parent", "Child"}, chunks[0].Breadcrumb); diff != "" {
		t.Errorf("breadcrumb mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentText(t *testing.T) {
	doc := doctree.New("mixed.txt", "Mixed")
	loc := doctree.Location{File: "mixed.txt", Line: 1}
	root := doc.Root()

	p := doctree.NewParagraph(loc)
	p.Content.AppendText("Intro.")
	root.AppendBlock(p)

	list := &doctree.List{Kind: doctree.OrderedList, Loc: loc}
	for _, s := range []string{"one", "two"} {
		ip := doctree.NewParagraph(loc)
		ip.Content.AppendText(s)
		list.NewItem(loc).AppendBlock(ip)
	}
	root.AppendBlock(list)
	root.AppendBlock(&doctree.ProgramListing{Text: "x := 1", Loc: loc})
	root.AppendBlock(&doctree.UnknownBlock{Name: "frobnicate", Loc: loc})
	section(doc, root, "Child", "not included")
	finished(t, doc)

	want := "Intro.\n\n1. one\n\n2. two\n\nx := 1"
	if got := ComponentText(doc.Root()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
