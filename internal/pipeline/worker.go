package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/doc"
	"github.com/clauselens/clauselens/internal/docstore"
	"github.com/clauselens/clauselens/internal/embed"
	"github.com/clauselens/clauselens/internal/index"
	"github.com/clauselens/clauselens/internal/parser"
)

// embedBatchSize bounds how many chunk texts go into one embedding request.
const embedBatchSize = 64

// Worker processes a single document job.
type Worker struct {
	gateway  *embed.Gateway
	store    *index.Store
	docs     *docstore.Store
	log      *slog.Logger
	chunkCfg chunker.Config
}

func NewWorker(gateway *embed.Gateway, store *index.Store, docs *docstore.Store, log *slog.Logger, chunkCfg chunker.Config) *Worker {
	return &Worker{
		gateway:  gateway,
		store:    store,
		docs:     docs,
		log:      log,
		chunkCfg: chunkCfg,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	parsed, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Hash the parsed text so re-uploads of the same content are caught even
	// when the container bytes differ.
	job.ContentHash = ContentHashHex([]byte(parsed.Text))

	existing, err := w.docs.FindByHash(ctx, job.ContentHash)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if err == nil {
		log.Info("duplicate document, skipping", "existing_doc_id", existing.DocID)
		job.SetDocID(existing.DocID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := chunker.Chunk(parsed.Text, w.chunkCfg)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks))

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: Embed in batches, retrying transient failures.
	job.SetStatus(StatusEmbedding, "embedding")
	vectors := make([][]float64, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := w.embedWithRetry(ctx, log, texts)
		if err != nil {
			log.Error("embedding failed", "batch_start", start, "error", err)
			job.AddError(fmt.Sprintf("embed chunks %d-%d: %s", start, end-1, err))
			job.SetStatus(StatusFailed, "embedding")
			return
		}
		vectors = append(vectors, batch...)
		job.AddChunksEmbedded(len(batch))
	}

	// Phase 4: Index and persist.
	job.SetStatus(StatusIndexing, "indexing")
	idx := &doc.DocumentIndex{
		DocID:     job.DocID,
		Filename:  job.Filename,
		CreatedAt: job.CreatedAt,
		Chunks:    chunks,
		Vectors:   vectors,
	}
	w.store.Put(idx)

	if err := w.docs.Save(ctx, idx.State(job.ContentHash)); err != nil {
		log.Error("persist failed", "error", err)
		job.AddError(fmt.Sprintf("persist: %s", err))
		// The in-memory index is live, so the document is still usable.
	}

	log.Info("ingest complete", "chunks", len(chunks), "degraded", !w.gateway.Enabled())
	job.SetStatus(StatusCompleted, "done")
}

// embedWithRetry embeds one batch, backing off on retryable errors.
func (w *Worker) embedWithRetry(ctx context.Context, log *slog.Logger, texts []string) ([][]float64, error) {
	var vectors [][]float64
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		vectors, lastErr = w.gateway.Embed(ctx, texts)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable embedding error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return vectors, lastErr
}
