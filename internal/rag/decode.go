package rag

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clauselens/clauselens/internal/doc"
)

// ErrMalformedResponse marks a completion payload that does not decode into
// the required structured shape. It is never silently coerced to a default.
var ErrMalformedResponse = errors.New("malformed completion response")

type chatPayload struct {
	Answer    *string `json:"answer"`
	Citations []struct {
		ChunkID string `json:"chunk_id"`
		Snippet string `json:"snippet"`
	} `json:"citations"`
}

// decodeAnswer parses and validates a chat completion payload. Chunk IDs are
// passed through unmodified; whether they reference real chunks is a
// data-quality concern for the model, not re-mapped here.
func decodeAnswer(raw string) (string, []doc.Citation, error) {
	var payload chatPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Answer == nil || *payload.Answer == "" {
		return "", nil, fmt.Errorf("%w: missing answer field", ErrMalformedResponse)
	}

	citations := make([]doc.Citation, 0, len(payload.Citations))
	for _, c := range payload.Citations {
		if c.ChunkID == "" {
			return "", nil, fmt.Errorf("%w: citation without chunk_id", ErrMalformedResponse)
		}
		citations = append(citations, doc.Citation{ChunkID: c.ChunkID, Snippet: c.Snippet})
	}
	return *payload.Answer, citations, nil
}

type reportPayload struct {
	DocumentSummary      *string         `json:"document_summary"`
	RiskScore            *int            `json:"risk_score"`
	TopRedFlags          []doc.RiskFlag  `json:"top_red_flags"`
	KeyClauses           []doc.KeyClause `json:"key_clauses"`
	MissingOrAmbiguous   []string        `json:"missing_or_ambiguous"`
	NegotiationQuestions []string        `json:"negotiation_questions"`
}

// decodeReport parses and validates a risk report payload.
func decodeReport(raw string) (*doc.RiskReport, error) {
	var payload reportPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.DocumentSummary == nil || *payload.DocumentSummary == "" {
		return nil, fmt.Errorf("%w: missing document_summary", ErrMalformedResponse)
	}
	if payload.RiskScore == nil {
		return nil, fmt.Errorf("%w: missing risk_score", ErrMalformedResponse)
	}
	if *payload.RiskScore < 0 || *payload.RiskScore > 100 {
		return nil, fmt.Errorf("%w: risk_score %d out of range", ErrMalformedResponse, *payload.RiskScore)
	}

	report := &doc.RiskReport{
		DocumentSummary:      *payload.DocumentSummary,
		RiskScore:            *payload.RiskScore,
		TopRedFlags:          payload.TopRedFlags,
		KeyClauses:           payload.KeyClauses,
		MissingOrAmbiguous:   payload.MissingOrAmbiguous,
		NegotiationQuestions: payload.NegotiationQuestions,
	}
	if report.TopRedFlags == nil {
		report.TopRedFlags = []doc.RiskFlag{}
	}
	if report.KeyClauses == nil {
		report.KeyClauses = []doc.KeyClause{}
	}
	if report.MissingOrAmbiguous == nil {
		report.MissingOrAmbiguous = []string{}
	}
	if report.NegotiationQuestions == nil {
		report.NegotiationQuestions = []string{}
	}
	return report, nil
}
