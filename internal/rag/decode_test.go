package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAnswer_Valid(t *testing.T) {
	raw := `{"answer": "The term is 12 months.", "citations": [{"chunk_id": "abc", "snippet": "a term of 12 months"}]}`
	answer, citations, err := decodeAnswer(raw)
	require.NoError(t, err)
	assert.Equal(t, "The term is 12 months.", answer)
	require.Len(t, citations, 1)
	assert.Equal(t, "abc", citations[0].ChunkID)
	assert.Equal(t, "a term of 12 months", citations[0].Snippet)
}

func TestDecodeAnswer_NoCitations(t *testing.T) {
	answer, citations, err := decodeAnswer(`{"answer": "I couldn't find that in the document."}`)
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Empty(t, citations)
}

func TestDecodeAnswer_Malformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{}`,
		`{"answer": ""}`,
		`{"citations": []}`,
		`{"answer": "ok", "citations": [{"snippet": "no id"}]}`,
	}
	for _, raw := range cases {
		_, _, err := decodeAnswer(raw)
		assert.ErrorIs(t, err, ErrMalformedResponse, "raw: %s", raw)
	}
}

func TestDecodeReport_Valid(t *testing.T) {
	raw := `{
		"document_summary": "A services agreement.",
		"risk_score": 62,
		"top_red_flags": [{"title": "Unlimited liability", "severity": "high", "clause_type": "Liability", "why_it_matters": "Uncapped exposure.", "evidence": [{"chunk_id": "c1", "quote": "liability shall be unlimited", "page": null}], "suggested_action": "Negotiate a cap."}],
		"key_clauses": [],
		"missing_or_ambiguous": ["No governing law clause."],
		"negotiation_questions": ["Can liability be capped?"]
	}`
	report, err := decodeReport(raw)
	require.NoError(t, err)
	assert.Equal(t, 62, report.RiskScore)
	require.Len(t, report.TopRedFlags, 1)
	assert.Equal(t, "c1", report.TopRedFlags[0].Evidence[0].ChunkID)
	assert.NotNil(t, report.KeyClauses)
}

func TestDecodeReport_NilSlicesNormalized(t *testing.T) {
	report, err := decodeReport(`{"document_summary": "ok", "risk_score": 10}`)
	require.NoError(t, err)
	assert.NotNil(t, report.TopRedFlags)
	assert.NotNil(t, report.KeyClauses)
	assert.NotNil(t, report.MissingOrAmbiguous)
	assert.NotNil(t, report.NegotiationQuestions)
}

func TestDecodeReport_Malformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"risk_score": 50}`,
		`{"document_summary": ""}`,
		`{"document_summary": "ok"}`,
		`{"document_summary": "ok", "risk_score": 101}`,
		`{"document_summary": "ok", "risk_score": -1}`,
	}
	for _, raw := range cases {
		_, err := decodeReport(raw)
		assert.ErrorIs(t, err, ErrMalformedResponse, "raw: %s", raw)
	}
}
