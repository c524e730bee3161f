package rag

import (
	"context"
	"log/slog"

	"github.com/clauselens/clauselens/internal/doc"
	"github.com/clauselens/clauselens/internal/index"
	"github.com/clauselens/clauselens/internal/llm"
)

// maxReportChunks bounds the context sent for report generation.
const maxReportChunks = 40

// degradedAnswer is the fixed chat response when no API key is configured.
const degradedAnswer = "No API key is configured, so I'm operating in mock mode. This contract looks standard, but review the termination clauses carefully."

const snippetLen = 100

// Completer is the completion service: role-tagged messages in, raw JSON out.
type Completer interface {
	CompleteJSON(ctx context.Context, messages []llm.Message) (string, error)
}

// Orchestrator composes retrieval, conversation history, and the completion
// service into grounded chat turns and per-document risk reports.
//
// Callers serialize operations per document; concurrent turns on the same
// document are last-write-wins on history and report.
type Orchestrator struct {
	store     *index.Store
	cache     *index.QueryCache
	completer Completer
	enabled   bool
	topK      int
	log       *slog.Logger
}

// NewOrchestrator wires the orchestrator. enabled=false selects degraded
// mode for both chat and reports; completer may then be nil.
func NewOrchestrator(store *index.Store, cache *index.QueryCache, completer Completer, enabled bool, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		cache:     cache,
		completer: completer,
		enabled:   enabled,
		topK:      index.DefaultTopK,
		log:       log,
	}
}

// SetTopK overrides how many context chunks each chat turn retrieves.
func (o *Orchestrator) SetTopK(k int) {
	if k > 0 {
		o.topK = k
	}
}

// AnswerQuestion runs one grounded chat turn against the document: retrieve
// context chunks for the question, call the completion service with the
// prior history, and append the user+assistant pair to the document's
// history. The assistant turn is returned.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, docID, question string) (doc.ChatMessage, error) {
	idx, err := o.store.Get(docID)
	if err != nil {
		return doc.ChatMessage{}, err
	}

	queryVec, err := o.cache.Embedding(ctx, docID, question)
	if err != nil {
		return doc.ChatMessage{}, err
	}
	contextChunks, err := index.Search(queryVec, idx.Chunks, idx.Vectors, o.topK)
	if err != nil {
		return doc.ChatMessage{}, err
	}

	var assistant doc.ChatMessage
	if !o.enabled {
		assistant = doc.ChatMessage{
			Role:      doc.RoleAssistant,
			Content:   degradedAnswer,
			Citations: mockCitations(contextChunks),
		}
	} else {
		raw, err := o.completer.CompleteJSON(ctx, buildChatMessages(idx.ChatHistory, contextChunks, question))
		if err != nil {
			return doc.ChatMessage{}, err
		}
		answer, citations, err := decodeAnswer(raw)
		if err != nil {
			return doc.ChatMessage{}, err
		}
		assistant = doc.ChatMessage{
			Role:      doc.RoleAssistant,
			Content:   answer,
			Citations: citations,
		}
	}

	// History is append-only: user turn first, assistant second.
	idx.ChatHistory = append(idx.ChatHistory,
		doc.ChatMessage{Role: doc.RoleUser, Content: question},
		assistant,
	)
	o.log.Info("chat turn answered", "doc_id", docID, "context_chunks", len(contextChunks), "degraded", !o.enabled)
	return assistant, nil
}

// GenerateReport returns the document's risk report, computing it on first
// call and caching it on the index. Repeat calls are pure reads and never
// touch the completion service again.
func (o *Orchestrator) GenerateReport(ctx context.Context, docID string) (*doc.RiskReport, error) {
	idx, err := o.store.Get(docID)
	if err != nil {
		return nil, err
	}
	if idx.Report != nil {
		return idx.Report, nil
	}

	var report *doc.RiskReport
	if !o.enabled {
		report = mockReport()
	} else {
		chunks := idx.Chunks
		if len(chunks) > maxReportChunks {
			chunks = chunks[:maxReportChunks]
		}
		raw, err := o.completer.CompleteJSON(ctx, buildReportMessages(chunks))
		if err != nil {
			return nil, err
		}
		report, err = decodeReport(raw)
		if err != nil {
			return nil, err
		}
	}

	idx.Report = report
	o.log.Info("risk report generated", "doc_id", docID, "risk_score", report.RiskScore, "degraded", !o.enabled)
	return report, nil
}

// mockCitations synthesizes citations from the first two context chunks so
// the degraded-mode response keeps the normal contract shape.
func mockCitations(contextChunks []doc.Chunk) []doc.Citation {
	n := len(contextChunks)
	if n > 2 {
		n = 2
	}
	citations := make([]doc.Citation, 0, n)
	for _, c := range contextChunks[:n] {
		citations = append(citations, doc.Citation{
			ChunkID: c.ID,
			Page:    c.Page,
			Snippet: snippet(c.Text),
		})
	}
	return citations
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) > snippetLen {
		runes = runes[:snippetLen]
	}
	return string(runes) + "..."
}

// mockReport is the canonical degraded-mode report fixture: structurally
// complete, with empty evidence lists.
func mockReport() *doc.RiskReport {
	return &doc.RiskReport{
		DocumentSummary: "A standard legal agreement (mock data - no API key configured).",
		RiskScore:       45,
		TopRedFlags: []doc.RiskFlag{
			{
				Title:           "Auto-renewal Clause",
				Severity:        "medium",
				ClauseType:      "Termination",
				WhyItMatters:    "You might be locked in for another year if you don't cancel manually.",
				Evidence:        []doc.Evidence{},
				SuggestedAction: "Set a reminder to review 60 days before expiration.",
			},
		},
		KeyClauses: []doc.KeyClause{
			{
				ClauseType:          "Confidentiality",
				Summary:             "Standard NDA language.",
				FriendlyExplanation: "Don't talk about the deal with outsiders.",
				RiskNotes:           "Mutual protection is good.",
				Evidence:            []doc.Evidence{},
			},
		},
		MissingOrAmbiguous:   []string{"Force Majeure not explicitly defined."},
		NegotiationQuestions: []string{"Can we cap the liability at 1x contract value?"},
	}
}
