package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clauselens/clauselens/internal/config"
	"github.com/clauselens/clauselens/internal/docstore"
	"github.com/clauselens/clauselens/internal/index"
	"github.com/clauselens/clauselens/internal/llm"
	"github.com/clauselens/clauselens/internal/pipeline"
	"github.com/clauselens/clauselens/internal/rag"
)

// Server is the HTTP API server for clauselens.
type Server struct {
	router  chi.Router
	ingest  *pipeline.Orchestrator
	rag     *rag.Orchestrator
	indexes *index.Store
	docs    *docstore.Store
	llm     *llm.Client
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. llmClient may be nil in
// degraded mode.
func NewServer(ingest *pipeline.Orchestrator, ragOrch *rag.Orchestrator, indexes *index.Store, docs *docstore.Store, llmClient *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		ingest:  ingest,
		rag:     ragOrch,
		indexes: indexes,
		docs:    docs,
		llm:     llmClient,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// API endpoints. Auth applies only when a key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/upload/batch", s.handleBatchUpload)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/doc/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/doc/{docID}/chat", s.handleChat)
		r.Post("/api/doc/{docID}/report", s.handleReport)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
