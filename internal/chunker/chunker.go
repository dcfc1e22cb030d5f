package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docingest/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// Chunk is a render-time slice of a finished document.
type Chunk struct {
	Text        string           `json:"text" yaml:"text"`
	Index       int              `json:"index" yaml:"index"`
	Breadcrumb  []string         `json:"breadcrumb,omitempty" yaml:"breadcrumb,omitempty"`
	ComponentID string           `json:"component_id" yaml:"component_id"`
	Loc         doctree.Location `json:"location" yaml:"location"`
	Tokens      int              `json:"tokens" yaml:"tokens"`
}

// ChunkDocument walks a finished Document and produces structure-aware chunks. Each
// component's own blocks are chunked together; child components get their own chunks.
func ChunkDocument(doc *doctree.Document, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	var chunks []Chunk
	// The document title is not part of any breadcrumb.
	walkComponent(doc.Root(), nil, cfg, &chunks)
	return chunks
}

// walkComponent recursively visits components, collecting text and splitting into chunks.
func walkComponent(c *doctree.Component, breadcrumb []string, cfg Config, chunks *[]Chunk) {
	bc := breadcrumb
	if c.Kind() != doctree.KindDocument {
		bc = append(copyBreadcrumb(breadcrumb), strings.TrimSpace(c.Title().Text()))
	}

	emit := func(text string) {
		tokens := EstimateTokens(text)
		if tokens < cfg.MinChunk {
			return
		}
		*chunks = append(*chunks, Chunk{
			Text:        text,
			Index:       len(*chunks),
			Breadcrumb:  copyBreadcrumb(bc),
			ComponentID: c.ID(),
			Loc:         c.Location(),
			Tokens:      tokens,
		})
	}

	if text := ComponentText(c); text != "" {
		if EstimateTokens(text) <= cfg.ChunkSize {
			// Fits in one chunk.
			emit(text)
		} else {
			for _, part := range splitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
				emit(part)
			}
		}
	}

	// Recurse into children.
	for _, child := range c.Children() {
		walkComponent(child, bc, cfg, chunks)
	}
}

// ComponentText renders the blocks directly inside c as plain text, one paragraph per
// block separated by blank lines. Diagnostic blocks and child components are skipped.
func ComponentText(c *doctree.Component) string {
	var parts []string
	for _, b := range c.Blocks() {
		parts = appendBlockText(parts, b)
	}
	return strings.Join(parts, "\n\n")
}

func appendBlockText(parts []string, b doctree.Block) []string {
	switch b := b.(type) {
	case *doctree.Paragraph:
		if t := strings.TrimSpace(b.Content.Text()); t != "" {
			parts = append(parts, t)
		}
	case *doctree.ProgramListing:
		if strings.TrimSpace(b.Text) != "" {
			parts = append(parts, b.Text)
		}
	case *doctree.List:
		for i, it := range b.Items {
			marker := "- "
			if b.Kind == doctree.OrderedList {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			var item []string
			for _, ib := range it.Blocks {
				item = appendBlockText(item, ib)
			}
			if len(item) > 0 {
				parts = append(parts, marker+strings.Join(item, " "))
			}
		}
	}
	return parts
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	// Split by paragraphs first.
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// If a single paragraph exceeds the target, split it further.
		if paraTokens > targetTokens {
			// Flush current buffer.
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			// Split the large paragraph by sentences.
			subParts := splitBySentences(para, targetTokens, overlapTokens)
			result = append(result, subParts...)
			continue
		}

		// Would adding this paragraph exceed the target?
		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start next chunk with overlap from end of current.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
