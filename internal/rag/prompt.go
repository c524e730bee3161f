package rag

import (
	"fmt"
	"strings"

	"github.com/clauselens/clauselens/internal/doc"
	"github.com/clauselens/clauselens/internal/llm"
)

const chatSystemPrompt = `You are a legal assistant. Answer ONLY using the provided context. If the answer is not in the context, say "I couldn't find that in the document." Cite sources by chunk ID.

Respond with a single JSON object:
{"answer": "...", "citations": [{"chunk_id": "...", "snippet": "..."}]}

Every citation must use a chunk ID that appears in the context, with a verbatim snippet.`

const reportSystemPrompt = `You are a senior legal counsel. Output only raw JSON.`

const reportInstructions = `Analyze the following document segments and produce a structured risk report.
For each red flag or key clause you MUST provide "evidence" entries with the exact "chunk_id" from the segments and a verbatim "quote".

Output EXACTLY the following JSON shape:
{
  "document_summary": "...",
  "risk_score": 0-100,
  "top_red_flags": [{"title": "...", "severity": "low|medium|high|critical", "clause_type": "...", "why_it_matters": "...", "evidence": [{"chunk_id": "...", "quote": "...", "page": null}], "suggested_action": "..."}],
  "key_clauses": [{"clause_type": "...", "summary": "...", "friendly_explanation": "...", "risk_notes": "...", "evidence": [{"chunk_id": "...", "quote": "...", "page": null}]}],
  "missing_or_ambiguous": ["..."],
  "negotiation_questions": ["..."]
}`

// buildChatMessages assembles the completion request for one chat turn:
// restricting system prompt, prior history verbatim, then a final user turn
// carrying the ID-tagged context chunks and the question.
func buildChatMessages(history []doc.ChatMessage, contextChunks []doc.Chunk, question string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: chatSystemPrompt})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(tagChunks(contextChunks))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	msgs = append(msgs, llm.Message{Role: "user", Content: sb.String()})
	return msgs
}

// buildReportMessages assembles the single report request over the given
// chunks (already capped by the caller).
func buildReportMessages(chunks []doc.Chunk) []llm.Message {
	var sb strings.Builder
	sb.WriteString(reportInstructions)
	sb.WriteString("\n\nDocument Segments:\n")
	sb.WriteString(tagChunks(chunks))
	return []llm.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

func tagChunks(chunks []doc.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[ID:%s] %s", c.ID, c.Text)
	}
	return strings.Join(parts, "\n\n")
}
