package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clauselens/clauselens/internal/docstore"
	"github.com/clauselens/clauselens/internal/index"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/rag"
)

// handleListDocuments lists all stored documents. The "indexed" field tells
// clients whether a document is queryable right now or needs re-ingestion.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.docs.List(r.Context())
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	docs := make([]map[string]any, 0, len(summaries))
	for _, d := range summaries {
		docs = append(docs, map[string]any{
			"doc_id":      d.DocID,
			"filename":    d.Filename,
			"created_at":  d.CreatedAt,
			"chunk_count": d.ChunkCount,
			"has_report":  d.HasReport,
			"indexed":     s.indexes.Has(d.DocID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleGetDocument returns one document's persisted state: chunks, chat
// history, and report when present.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	state, err := s.docs.Get(r.Context(), docID)
	if errors.Is(err, docstore.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":       state.DocID,
		"filename":     state.Filename,
		"created_at":   state.CreatedAt,
		"chunks":       state.Chunks,
		"chat_history": state.ChatHistory,
		"report":       state.Report,
		"indexed":      s.indexes.Has(docID),
	})
}

// handleDeleteDocument drops a document from both the live index and the
// store.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	s.indexes.Delete(docID)
	if err := s.docs.Delete(r.Context(), docID); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": docID})
}

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := s.rag.AnswerQuestion(r.Context(), docID, req.Question)
	if err != nil {
		s.writeRAGError(w, docID, err)
		return
	}

	s.persistDocument(r.Context(), docID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"answer":    answer.Content,
		"citations": answer.Citations,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	report, err := s.rag.GenerateReport(r.Context(), docID)
	if err != nil {
		s.writeRAGError(w, docID, err)
		return
	}

	s.persistDocument(r.Context(), docID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// writeRAGError maps retrieval and completion failures onto HTTP statuses.
func (s *Server) writeRAGError(w http.ResponseWriter, docID string, err error) {
	switch {
	case errors.Is(err, index.ErrNotIndexed):
		jsonError(w, "document is not indexed; upload it again", http.StatusConflict)
	case errors.Is(err, rag.ErrMalformedResponse):
		jsonError(w, "analysis service returned a malformed response", http.StatusBadGateway)
	case errors.Is(err, llm.ErrUnavailable):
		jsonError(w, "analysis service unavailable", http.StatusServiceUnavailable)
	default:
		s.log.Error("request failed", "doc_id", docID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// persistDocument mirrors the live index into the document store after a
// successful mutation. Failures are logged, not surfaced: the in-memory state
// is already updated and the response must reflect it.
func (s *Server) persistDocument(ctx context.Context, docID string) {
	idx, err := s.indexes.Get(docID)
	if err != nil {
		return
	}
	contentHash := ""
	if prev, err := s.docs.Get(ctx, docID); err == nil {
		contentHash = prev.ContentHash
	}
	if err := s.docs.Save(ctx, idx.State(contentHash)); err != nil {
		s.log.Error("persist after mutation failed", "doc_id", docID, "error", err)
	}
}
