package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/dgallion1/docingest/internal/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	cfg = config.Load()
	color.NoColor = true
}

func TestCheckCmd(t *testing.T) {
	setup(t)
	good := writeFile(t, "good.txt", "Fine text.\n")
	bad := writeFile(t, "bad.xml", `<book><title>B</title><para><xref linkend="gone"/></para></book>`)

	var out bytes.Buffer
	cmd := checkCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{good, bad})
	err := cmd.Execute()
	if !errors.Is(err, errProblems) {
		t.Fatalf("expected problems error, got %v", err)
	}
	got := out.String()
	if !strings.Contains(got, bad+":1:") || !strings.Contains(got, "gone") {
		t.Errorf("expected diagnostic for %s, got:\n%s", bad, got)
	}
	if !strings.Contains(got, "1 problem(s) in 2 file(s)") {
		t.Errorf("expected summary line, got:\n%s", got)
	}

	out.Reset()
	cmd = checkCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{good})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", out.String())
	}
}

func TestDumpCmd_JSON(t *testing.T) {
	setup(t)
	p := writeFile(t, "readme.md", "# Intro\n\nHello.\n")

	var out bytes.Buffer
	cmd := dumpCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--format", "json", p})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tree struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind string `json:"kind"`
			ID   string `json:"id"`
		} `json:"children"`
	}
	if err := json.Unmarshal(out.Bytes(), &tree); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if tree.Kind != "document" {
		t.Errorf("expected %q, got %q", "document", tree.Kind)
	}
	last := tree.Children[len(tree.Children)-1]
	if last.Kind != "section" || last.ID != "intro" {
		t.Errorf("unexpected last child %+v", last)
	}
}

func TestDumpCmd_FatalError(t *testing.T) {
	setup(t)
	p := writeFile(t, "broken.xml", "<book><para>")

	var out, errOut bytes.Buffer
	cmd := dumpCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{p})
	if err := cmd.Execute(); !errors.Is(err, errProblems) {
		t.Fatalf("expected problems error, got %v", err)
	}
	if !strings.Contains(errOut.String(), "broken.xml") {
		t.Errorf("expected error naming the file, got %q", errOut.String())
	}
}

func TestSupportedArgs(t *testing.T) {
	cmd := checkCmd()
	if err := supportedArgs(cmd, nil); err == nil {
		t.Error("expected error without files")
	}
	if err := supportedArgs(cmd, []string{"a.exe"}); err == nil {
		t.Error("expected error for unsupported file")
	}
	if err := supportedArgs(cmd, []string{"a.md", "b.XML"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChunksCmd(t *testing.T) {
	setup(t)
	p := writeFile(t, "notes.txt", "Setup\n=====\n\n"+strings.Repeat("Install the thing. ", 20)+"\n")

	var out bytes.Buffer
	cmd := chunksCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--min-chunk", "1", p})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var files []struct {
		File   string `json:"file"`
		Chunks []struct {
			ComponentID string   `json:"component_id"`
			Breadcrumb  []string `json:"breadcrumb"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(out.Bytes(), &files); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(files) != 1 || len(files[0].Chunks) != 1 {
		t.Fatalf("unexpected output %s", out.String())
	}
	if c := files[0].Chunks[0]; c.ComponentID != "setup" || len(c.Breadcrumb) != 1 {
		t.Errorf("unexpected chunk %+v", c)
	}
}
