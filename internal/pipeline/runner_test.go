package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/docingest/internal/chunker"
	"github.com/dgallion1/docingest/internal/doctree"
	"github.com/dgallion1/docingest/internal/parser"
)

func newTestRunner() *Runner {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(log, parser.Options{RootElement: "book"}, chunker.Config{ChunkSize: 1500, ChunkOverlap: 200, MinChunk: 1})
}

func TestRunner_ProcessLite(t *testing.T) {
	r := newTestRunner()
	res := r.Process(context.Background(), strings.NewReader("Setup\n=====\n\nInstall it.\n"), "guide.txt")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Job.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, res.Job.Status)
	}
	if res.Job.Title != "guide" {
		t.Errorf("expected title %q, got %q", "guide", res.Job.Title)
	}
	if res.Job.Progress.Components != 2 {
		t.Errorf("expected 2 components, got %d", res.Job.Progress.Components)
	}
	if len(res.Chunks) != 1 || res.Chunks[0].ComponentID != "setup" {
		t.Fatalf("unexpected chunks %+v", res.Chunks)
	}
	if diff := cmp.Diff([]string{"Setup"}, res.Chunks[0].Breadcrumb); diff != "" {
		t.Errorf("breadcrumb mismatch (-want +got):\n%s", diff)
	}
	if res.Job.ContentHash != ContentHashHex([]byte("Setup\n=====\n\nInstall it.\n")) {
		t.Errorf("unexpected content hash %q", res.Job.ContentHash)
	}
}

func TestRunner_DiagnosticsMarkPartial(t *testing.T) {
	r := newTestRunner()
	input := `<book><title>T</title><chapter><title>C</title><frobnicate/><para><xref linkend="nowhere"/></para></chapter></book>`
	res := r.Process(context.Background(), strings.NewReader(input), "manual.xml")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Job.Status != StatusPartial {
		t.Errorf("expected status %q, got %q", StatusPartial, res.Job.Status)
	}
	if len(res.Diagnostics) != 2 || res.Job.Progress.Diagnostics != 2 {
		t.Errorf("expected 2 diagnostics, got %d", len(res.Diagnostics))
	}
}

func TestRunner_SkipsDuplicates(t *testing.T) {
	r := newTestRunner()
	first := r.Process(context.Background(), strings.NewReader("Same text.\n"), "a.txt")
	second := r.Process(context.Background(), strings.NewReader("Same text.\n"), "b.txt")

	if second.Job.Status != StatusDupSkipped {
		t.Fatalf("expected status %q, got %q", StatusDupSkipped, second.Job.Status)
	}
	if second.Job.DuplicateOf != first.Job.ID {
		t.Errorf("expected duplicate of %q, got %q", first.Job.ID, second.Job.DuplicateOf)
	}
	if second.Document != nil || second.Chunks != nil {
		t.Error("expected no document for a skipped duplicate")
	}
	if n := len(r.Jobs().List()); n != 2 {
		t.Errorf("expected 2 jobs, got %d", n)
	}
}

func TestRunner_SameBytesDifferentFormat(t *testing.T) {
	r := newTestRunner()
	body := "Title\n=====\n\nSame text.\n"
	md := r.Process(context.Background(), strings.NewReader(body), "a.md")
	txt := r.Process(context.Background(), strings.NewReader(body), "a.txt")
	again := r.Process(context.Background(), strings.NewReader(body), "b.TXT")

	for _, res := range []Result{md, txt} {
		if res.Err != nil || res.Job.Status != StatusCompleted {
			t.Errorf("%s: expected completed, got status %q and error %v", res.Job.Filename, res.Job.Status, res.Err)
		}
	}
	if md.Job.ContentHash != txt.Job.ContentHash {
		t.Errorf("expected equal content hashes, got %q and %q", md.Job.ContentHash, txt.Job.ContentHash)
	}
	if again.Job.Status != StatusDupSkipped || again.Job.DuplicateOf != txt.Job.ID {
		t.Errorf("expected duplicate of %q, got status %q duplicate of %q", txt.Job.ID, again.Job.Status, again.Job.DuplicateOf)
	}
}

func TestRunner_FailedParseIsNotRemembered(t *testing.T) {
	r := newTestRunner()
	for i := range 2 {
		res := r.Process(context.Background(), strings.NewReader("---\n"), "bad.txt")
		if !errors.Is(res.Err, doctree.ErrSyntax) {
			t.Fatalf("run %d: expected syntax error, got %v", i, res.Err)
		}
		if res.Job.Status != StatusFailed || res.Job.Phase != "parsing" {
			t.Errorf("run %d: unexpected status %q in phase %q", i, res.Job.Status, res.Job.Phase)
		}
		if len(res.Job.Progress.Errors) != 1 || !strings.HasPrefix(res.Job.Progress.Errors[0], "parsing: ") {
			t.Errorf("run %d: unexpected errors %v", i, res.Job.Progress.Errors)
		}
	}
}

func TestRunner_UnsupportedExtension(t *testing.T) {
	r := newTestRunner()
	res := r.Process(context.Background(), strings.NewReader("MZ"), "tool.exe")
	if res.Err == nil || res.Job.Status != StatusFailed {
		t.Errorf("expected failure, got status %q and error %v", res.Job.Status, res.Err)
	}
}

func TestRunner_MissingFile(t *testing.T) {
	r := newTestRunner()
	path := filepath.Join(t.TempDir(), "missing.txt")
	res := r.ProcessFile(context.Background(), path)
	if !errors.Is(res.Err, doctree.ErrIO) {
		t.Fatalf("expected i/o error, got %v", res.Err)
	}
	var ioErr *doctree.IOError
	if !errors.As(res.Err, &ioErr) || ioErr.Path != path {
		t.Errorf("expected error naming %q, got %v", path, res.Err)
	}
	if res.Job.Phase != "reading" {
		t.Errorf("expected phase %q, got %q", "reading", res.Job.Phase)
	}
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.md":  "# Intro\n\nHello.\n",
		"b.txt": "Plain text.\n",
	}
	var paths []string
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	paths = append(paths, filepath.Join(dir, "a.md"), filepath.Join(dir, "b.txt"))

	r := newTestRunner()
	results, err := r.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Err != nil || res.Job.Status != StatusCompleted {
			t.Errorf("result %d: status %q, error %v", i, res.Job.Status, res.Err)
		}
		if res.Job.Filename != paths[i] {
			t.Errorf("result %d: expected %q, got %q", i, paths[i], res.Job.Filename)
		}
	}
}

func TestRunner_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := newTestRunner().Run(ctx, []string{"a.txt"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
