package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docingest/internal/chunker"
	"github.com/dgallion1/docingest/internal/parser"
	"github.com/dgallion1/docingest/internal/scan"
)

type Config struct {
	// Structured dialect
	RootElement string

	// Rune stream
	MaxWindow int
	ReadChunk int

	// Chunking defaults
	ChunkSize    int
	ChunkOverlap int
	MinChunk     int

	// PDF
	PDFFallbackPdftotext bool

	// Output
	Color    string // auto, always or never
	LogLevel string
}

func Load() Config {
	cfg := Config{
		RootElement: envOr("DOCINGEST_ROOT_ELEMENT", "book"),

		MaxWindow: envInt("DOCINGEST_MAX_WINDOW", 0),
		ReadChunk: envInt("DOCINGEST_READ_CHUNK", 4096),

		ChunkSize:    envInt("DOCINGEST_CHUNK_SIZE", 1500),
		ChunkOverlap: envInt("DOCINGEST_CHUNK_OVERLAP", 200),
		MinChunk:     envInt("DOCINGEST_MIN_CHUNK", 100),

		PDFFallbackPdftotext: envBool("DOCINGEST_PDF_FALLBACK_PDFTOTEXT", true),

		Color:    strings.ToLower(envOr("DOCINGEST_COLOR", "auto")),
		LogLevel: strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	if cfg.MaxWindow < 0 {
		cfg.MaxWindow = 0
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = 4096
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk < 0 {
		cfg.MinChunk = 100
	}

	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.RootElement) == "" {
		return fmt.Errorf("DOCINGEST_ROOT_ELEMENT must not be empty")
	}
	if c.MaxWindow > 0 && c.MaxWindow < c.ReadChunk {
		return fmt.Errorf("DOCINGEST_MAX_WINDOW (%d) is smaller than DOCINGEST_READ_CHUNK (%d)", c.MaxWindow, c.ReadChunk)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("DOCINGEST_CHUNK_OVERLAP (%d) must be smaller than DOCINGEST_CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("DOCINGEST_COLOR must be auto, always or never, got %q", c.Color)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ParserOptions returns the front-end settings for parser.ForFile.
func (c Config) ParserOptions() parser.Options {
	opts := parser.Options{
		RootElement:       c.RootElement,
		FallbackPdftotext: c.PDFFallbackPdftotext,
	}
	opts.StreamOptions = append(opts.StreamOptions, scan.WithReadChunk(c.ReadChunk))
	if c.MaxWindow > 0 {
		opts.StreamOptions = append(opts.StreamOptions, scan.WithMaxWindow(c.MaxWindow))
	}
	return opts
}

func (c Config) ChunkerConfig() chunker.Config {
	return chunker.Config{
		ChunkSize:    c.ChunkSize,
		ChunkOverlap: c.ChunkOverlap,
		MinChunk:     c.MinChunk,
	}
}

// Level maps LOG_LEVEL onto a slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
