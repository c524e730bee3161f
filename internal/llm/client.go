package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUnavailable marks a transport-level failure of the embedding or
// completion service. It is distinct from degraded mode, which is selected at
// construction time when no API key is configured.
var ErrUnavailable = errors.New("llm service unavailable")

// Message is one role-tagged turn sent to the completion service.
type Message struct {
	Role    string
	Content string
}

// Client wraps the OpenAI API for embeddings and JSON-mode chat completions.
type Client struct {
	api        *openai.Client
	chatModel  string
	embedModel openai.EmbeddingModel

	Stats *Stats
}

// NewClient creates a client for the given API key and chat model.
func NewClient(apiKey, chatModel string) *Client {
	if chatModel == "" {
		chatModel = openai.GPT4o
	}
	return &Client{
		api:        openai.NewClient(apiKey),
		chatModel:  chatModel,
		embedModel: openai.SmallEmbedding3,
		Stats:      NewStats(time.Hour),
	}
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	return c.chatModel
}

// Embeddings returns one vector per input text, in input order.
func (c *Client) Embeddings(ctx context.Context, texts []string) ([][]float64, error) {
	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.embedModel,
	})
	c.Stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return nil, wrapAPIError("create embeddings", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: got %d vectors for %d inputs: %w",
			len(resp.Data), len(texts), ErrUnavailable)
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float64, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float64(f)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// CompleteJSON runs a chat completion in JSON mode and returns the raw
// response text with any markdown code fence stripped.
func (c *Client) CompleteJSON(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: msgs,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	c.Stats.Record(time.Since(start).Milliseconds())
	if err != nil {
		return "", wrapAPIError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response: %w", ErrUnavailable)
	}
	return stripCodeBlock(resp.Choices[0].Message.Content), nil
}

// wrapAPIError maps API failures onto the local error taxonomy: rate limits
// and server errors become retryable, everything else is ErrUnavailable.
func wrapAPIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%s: %w", op, &RetryableError{
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
			})
		}
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func (e *RetryableError) Unwrap() error { return ErrUnavailable }
