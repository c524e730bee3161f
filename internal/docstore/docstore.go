// Package docstore persists document metadata in SQLite so uploads, chat
// history, and reports survive restarts. Vectors are not persisted; after a
// restart a document must be re-ingested before querying.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/clauselens/clauselens/internal/doc"
)

// ErrNotFound is returned when no document with the given ID exists.
var ErrNotFound = errors.New("document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id        TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	content_hash  TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	chunks        TEXT NOT NULL,
	chat_history  TEXT NOT NULL,
	report        TEXT
);
CREATE INDEX IF NOT EXISTS idx_documents_content_hash ON documents(content_hash);
`

// Store is a SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the document database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "documents.db")

	// WAL mode so reads do not block the ingest pipeline's writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save upserts a document's persisted state.
func (s *Store) Save(ctx context.Context, state doc.DocumentState) error {
	chunks, err := json.Marshal(state.Chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	history, err := json.Marshal(state.ChatHistory)
	if err != nil {
		return fmt.Errorf("marshal chat history: %w", err)
	}
	var report sql.NullString
	if state.Report != nil {
		b, err := json.Marshal(state.Report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		report = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, filename, content_hash, created_at, chunks, chat_history, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			filename = excluded.filename,
			content_hash = excluded.content_hash,
			chunks = excluded.chunks,
			chat_history = excluded.chat_history,
			report = excluded.report`,
		state.DocID, state.Filename, state.ContentHash, state.CreatedAt.UTC(),
		string(chunks), string(history), report)
	if err != nil {
		return fmt.Errorf("save document %s: %w", state.DocID, err)
	}
	return nil
}

// Get loads one document's persisted state.
func (s *Store) Get(ctx context.Context, docID string) (*doc.DocumentState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT doc_id, filename, content_hash, created_at, chunks, chat_history, report
		FROM documents WHERE doc_id = ?`, docID)
	state, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	return state, nil
}

// FindByHash returns the document with the given content hash, or ErrNotFound.
// Used for duplicate detection on upload.
func (s *Store) FindByHash(ctx context.Context, contentHash string) (*doc.DocumentState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT doc_id, filename, content_hash, created_at, chunks, chat_history, report
		FROM documents WHERE content_hash = ? LIMIT 1`, contentHash)
	state, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return state, nil
}

// Summary is the listing view of a stored document.
type Summary struct {
	DocID      string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	CreatedAt  time.Time `json:"created_at"`
	ChunkCount int       `json:"chunk_count"`
	HasReport  bool      `json:"has_report"`
}

// List returns summaries of all stored documents, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, filename, created_at, chunks, report IS NOT NULL
		FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var chunksJSON string
		if err := rows.Scan(&s.DocID, &s.Filename, &s.CreatedAt, &chunksJSON, &s.HasReport); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		var chunks []doc.Chunk
		if err := json.Unmarshal([]byte(chunksJSON), &chunks); err != nil {
			return nil, fmt.Errorf("unmarshal chunks: %w", err)
		}
		s.ChunkCount = len(chunks)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	return nil
}

func scanDocument(row *sql.Row) (*doc.DocumentState, error) {
	var state doc.DocumentState
	var chunksJSON, historyJSON string
	var reportJSON sql.NullString
	if err := row.Scan(&state.DocID, &state.Filename, &state.ContentHash, &state.CreatedAt,
		&chunksJSON, &historyJSON, &reportJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chunksJSON), &state.Chunks); err != nil {
		return nil, fmt.Errorf("unmarshal chunks: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &state.ChatHistory); err != nil {
		return nil, fmt.Errorf("unmarshal chat history: %w", err)
	}
	if reportJSON.Valid {
		var r doc.RiskReport
		if err := json.Unmarshal([]byte(reportJSON.String), &r); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		state.Report = &r
	}
	return &state, nil
}
