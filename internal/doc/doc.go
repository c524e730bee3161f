package doc

import "time"

// Chunk is a bounded text segment of one document. Chunk IDs are unique within
// a document and stable for its lifetime; citations key on them.
type Chunk struct {
	ID   string `json:"id"`
	Page *int   `json:"page"`
	Text string `json:"text"`
}

// Citation points at a chunk by ID. It is a weak reference used for display;
// the chunk itself is owned by the document index.
type Citation struct {
	ChunkID string `json:"chunk_id"`
	Page    *int   `json:"page"`
	Snippet string `json:"snippet"`
}

// ChatMessage is one turn of the per-document conversation.
type ChatMessage struct {
	Role      string     `json:"role"` // "user" or "assistant"
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Evidence ties a report finding to a verbatim quote from a chunk.
type Evidence struct {
	ChunkID string `json:"chunk_id"`
	Quote   string `json:"quote"`
	Page    *int   `json:"page"`
}

// RiskFlag is a single red flag in a risk report.
type RiskFlag struct {
	Title           string     `json:"title"`
	Severity        string     `json:"severity"` // low|medium|high|critical
	ClauseType      string     `json:"clause_type"`
	WhyItMatters    string     `json:"why_it_matters"`
	Evidence        []Evidence `json:"evidence"`
	SuggestedAction string     `json:"suggested_action"`
}

// KeyClause is a notable clause surfaced by a risk report.
type KeyClause struct {
	ClauseType          string     `json:"clause_type"`
	Summary             string     `json:"summary"`
	FriendlyExplanation string     `json:"friendly_explanation"`
	RiskNotes           string     `json:"risk_notes"`
	Evidence            []Evidence `json:"evidence"`
}

// RiskReport is the structured analysis of one document. It is computed at
// most once per document and cached on the index.
type RiskReport struct {
	DocumentSummary      string      `json:"document_summary"`
	RiskScore            int         `json:"risk_score"` // 0-100
	TopRedFlags          []RiskFlag  `json:"top_red_flags"`
	KeyClauses           []KeyClause `json:"key_clauses"`
	MissingOrAmbiguous   []string    `json:"missing_or_ambiguous"`
	NegotiationQuestions []string    `json:"negotiation_questions"`
}

// DocumentIndex is the in-memory retrieval state for one document. Vectors is
// parallel to Chunks (same length, same order). Callers serialize mutations
// per document; the index does no internal locking.
type DocumentIndex struct {
	DocID     string
	Filename  string
	CreatedAt time.Time

	Chunks  []Chunk
	Vectors [][]float64

	ChatHistory []ChatMessage
	Report      *RiskReport
}

// DocumentState is the persisted view of a document: everything a store must
// mirror after a successful mutation. Vectors stay memory-only, so a restart
// loses the index until the document is re-ingested.
type DocumentState struct {
	DocID       string        `json:"doc_id"`
	Filename    string        `json:"filename"`
	ContentHash string        `json:"content_hash,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Chunks      []Chunk       `json:"chunks"`
	ChatHistory []ChatMessage `json:"chat_history"`
	Report      *RiskReport   `json:"report_json,omitempty"`
}

// State returns the persistable view of the index.
func (d *DocumentIndex) State(contentHash string) DocumentState {
	return DocumentState{
		DocID:       d.DocID,
		Filename:    d.Filename,
		ContentHash: contentHash,
		CreatedAt:   d.CreatedAt,
		Chunks:      d.Chunks,
		ChatHistory: d.ChatHistory,
		Report:      d.Report,
	}
}
