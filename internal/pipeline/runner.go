package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docingest/internal/chunker"
	"github.com/dgallion1/docingest/internal/doctree"
	"github.com/dgallion1/docingest/internal/parser"
)

// Result is everything produced for one input file. Document and Chunks are nil when
// Err is set or the file duplicated an earlier one.
type Result struct {
	Job         JobSnapshot
	Document    *doctree.Document
	Diagnostics []doctree.Diagnostic
	Chunks      []chunker.Chunk
	Err         error
}

// Runner ingests files one at a time: read, parse, finish, collect diagnostics, chunk.
type Runner struct {
	log      *slog.Logger
	opts     parser.Options
	chunkCfg chunker.Config
	jobs     *JobStore

	// content hash -> id of the job that first produced it
	seen map[string]string
}

func NewRunner(log *slog.Logger, opts parser.Options, chunkCfg chunker.Config) *Runner {
	return &Runner{
		log:      log,
		opts:     opts,
		chunkCfg: chunkCfg,
		jobs:     NewJobStore(),
		seen:     make(map[string]string),
	}
}

// Jobs exposes the registry of every job the runner has started.
func (r *Runner) Jobs() *JobStore { return r.jobs }

// Run processes paths sequentially. It stops early only when ctx is cancelled; per-file
// failures are reported through each Result.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.ProcessFile(ctx, path))
	}
	return results, nil
}

// ProcessFile reads path and ingests its contents.
func (r *Runner) ProcessFile(ctx context.Context, path string) Result {
	job := newJob(path)
	r.jobs.Put(job)
	log := r.log.With("job_id", job.ID, "file", path)

	job.SetStatus(StatusReading, "reading")
	data, err := os.ReadFile(path)
	if err != nil {
		return r.fail(log, job, "reading", doctree.NewIOError("read", path, err))
	}
	return r.process(ctx, log, job, data)
}

// Process ingests the contents of rd as if they had been read from filename. The
// extension of filename selects the front end.
func (r *Runner) Process(ctx context.Context, rd io.Reader, filename string) Result {
	job := newJob(filename)
	r.jobs.Put(job)
	log := r.log.With("job_id", job.ID, "file", filename)

	job.SetStatus(StatusReading, "reading")
	data, err := io.ReadAll(rd)
	if err != nil {
		return r.fail(log, job, "reading", doctree.NewIOError("read", filename, err))
	}
	return r.process(ctx, log, job, data)
}

func (r *Runner) process(ctx context.Context, log *slog.Logger, job *Job, data []byte) Result {
	if err := ctx.Err(); err != nil {
		return r.fail(log, job, "reading", err)
	}

	// Identical bytes read by the same front end produce identical trees, so only the
	// first copy is parsed. The extension picks the front end.
	job.ContentHash = ContentHashHex(data)
	key := dedupKey(job.Filename, job.ContentHash)
	if first, ok := r.seen[key]; ok {
		job.DuplicateOf = first
		log.Info("duplicate document, skipping", "duplicate_of", first)
		job.SetStatus(StatusDupSkipped, "dedup")
		return Result{Job: job.Snapshot()}
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, r.opts)
	if err != nil {
		return r.fail(log, job, "parsing", err)
	}
	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		return r.fail(log, job, "parsing", err)
	}
	r.seen[key] = job.ID

	diags := doctree.Diagnostics(doc)
	title := strings.TrimSpace(doc.Root().Title().Text())
	job.SetTree(title, doc.Len(), len(diags))
	for _, d := range diags {
		log.Debug("diagnostic", "message", d.Message, "location", locString(d.Loc))
	}
	log.Info("parsed document", "title", title, "components", doc.Len(), "diagnostics", len(diags))

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.ChunkDocument(doc, r.chunkCfg)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks))

	if len(diags) > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	return Result{
		Job:         job.Snapshot(),
		Document:    doc,
		Diagnostics: diags,
		Chunks:      chunks,
	}
}

func (r *Runner) fail(log *slog.Logger, job *Job, phase string, err error) Result {
	log.Error(phase+" failed", "error", err)
	job.AddError(fmt.Sprintf("%s: %s", phase, err))
	job.SetStatus(StatusFailed, phase)
	return Result{Job: job.Snapshot(), Err: err}
}

func locString(loc *doctree.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String()
}

func dedupKey(filename, hash string) string {
	return strings.ToLower(filepath.Ext(filename)) + ":" + hash
}
