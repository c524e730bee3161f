package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/clauselens/internal/chunker"
	"github.com/clauselens/clauselens/internal/docstore"
	"github.com/clauselens/clauselens/internal/embed"
	"github.com/clauselens/clauselens/internal/index"
)

func newTestWorker(t *testing.T) (*Worker, *index.Store, *docstore.Store) {
	t.Helper()
	docs, err := docstore.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { docs.Close() })

	store := index.NewStore()
	gateway := embed.NewGateway(nil, false)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(gateway, store, docs, log, chunker.DefaultConfig()), store, docs
}

func newTestJob(id, docID, filename, content string) *Job {
	job := &Job{
		ID:        id,
		DocID:     docID,
		Status:    StatusQueued,
		Filename:  filename,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(content))
	return job
}

func TestWorker_ProcessIndexesAndPersists(t *testing.T) {
	w, store, docs := newTestWorker(t)
	content := strings.Repeat("The vendor may terminate this agreement at will. ", 60)
	job := newTestJob("j1", "d1", "contract.txt", content)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status)
	assert.Positive(t, snap.Progress.TotalChunks)
	assert.Equal(t, snap.Progress.TotalChunks, snap.Progress.ChunksEmbedded)
	assert.NotEmpty(t, job.ContentHash)

	idx, err := store.Get("d1")
	require.NoError(t, err)
	assert.Len(t, idx.Vectors, len(idx.Chunks))

	state, err := docs.Get(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, job.ContentHash, state.ContentHash)
	assert.Len(t, state.Chunks, snap.Progress.TotalChunks)
}

func TestWorker_ProcessUnsupportedFormat(t *testing.T) {
	w, _, _ := newTestWorker(t)
	job := newTestJob("j1", "d1", "contract.exe", "binary")

	w.Process(context.Background(), job)

	assert.Equal(t, StatusFailed, job.Snapshot().Status)
}

func TestWorker_ProcessEmptyDocument(t *testing.T) {
	w, store, _ := newTestWorker(t)
	job := newTestJob("j1", "d1", "empty.txt", "   \n\n  ")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.NotEmpty(t, snap.Progress.Errors)
	assert.False(t, store.Has("d1"))
}

func TestWorker_ProcessDuplicateSkipped(t *testing.T) {
	w, _, _ := newTestWorker(t)
	content := "This agreement renews automatically each year."

	first := newTestJob("j1", "d1", "a.txt", content)
	w.Process(context.Background(), first)
	require.Equal(t, StatusCompleted, first.Snapshot().Status)

	second := newTestJob("j2", "d2", "b.txt", content)
	w.Process(context.Background(), second)

	snap := second.Snapshot()
	assert.Equal(t, StatusDupSkipped, snap.Status)
	// The job points at the already ingested document.
	assert.Equal(t, "d1", snap.DocID)
}
