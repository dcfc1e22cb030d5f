package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docingest/internal/config"
	"github.com/dgallion1/docingest/internal/parser"
	"github.com/dgallion1/docingest/internal/pipeline"
)

var version = "0.1.0"

// Settings shared by every subcommand, loaded from the environment and overridden by flags.
var cfg config.Config

func main() {
	cfg = config.Load()

	rootCmd := &cobra.Command{
		Use:   "docingest",
		Short: "Parse documents into a structured, cross-referenced tree",
		Long: `docingest reads DocBook XML, a lightweight plain-text markup, Markdown,
HTML, DOCX, PDF and CSV files and builds one document tree per file:
nested components (parts, chapters, sections), block content, and
resolved cross references. Problems found while parsing stay in the
tree as diagnostics instead of aborting the run.

Supported extensions: .xml .dbk .docbook .txt .text .lite .md .markdown
.html .htm .docx .pdf .csv`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		setupColor(cfg.Color)
		return nil
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.RootElement, "root-element", cfg.RootElement, "root element of DocBook documents")
	flags.IntVar(&cfg.MaxWindow, "max-window", cfg.MaxWindow, "bound on buffered lookahead in runes for plain-text markup (0 = unbounded)")
	flags.StringVar(&cfg.Color, "color", cfg.Color, "colorize output: auto, always or never")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&cfg.PDFFallbackPdftotext, "pdftotext", cfg.PDFFallbackPdftotext, "fall back to pdftotext when PDF text extraction fails")

	rootCmd.AddCommand(dumpCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(chunksCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	// Validate has already checked the level.
	lvl, _ := cfg.Level()
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newRunner() *pipeline.Runner {
	return pipeline.NewRunner(newLogger(), cfg.ParserOptions(), cfg.ChunkerConfig())
}

func setupColor(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		fd := os.Stdout.Fd()
		color.NoColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
}

func supportedArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s needs at least one file", cmd.Name())
	}
	for _, a := range args {
		if !parser.IsSupportedExtension(a) {
			return fmt.Errorf("unsupported file type: %s", a)
		}
	}
	return nil
}
