package embed

import (
	"context"
	"fmt"
)

// Dimension is the vector size of text-embedding-3-small.
const Dimension = 1536

// Backend produces one vector per input text, in input order.
type Backend interface {
	Embeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// Gateway wraps the embedding service. When no credentials are configured it
// runs in degraded mode: every input maps to a zero vector of the nominal
// dimensionality, so downstream retrieval can detect the mode and stay
// deterministic. Degraded mode is not an error.
type Gateway struct {
	backend Backend
	enabled bool
}

// NewGateway builds a gateway. enabled=false selects degraded mode; backend
// may then be nil.
func NewGateway(backend Backend, enabled bool) *Gateway {
	return &Gateway{backend: backend, enabled: enabled}
}

// Enabled reports whether real embeddings are configured.
func (g *Gateway) Enabled() bool { return g.enabled }

// Embed returns one vector per input text, preserving order. The gateway does
// no caching; query memoization lives in the index package.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if !g.enabled {
		vectors := make([][]float64, len(texts))
		for i := range vectors {
			vectors[i] = make([]float64, Dimension)
		}
		return vectors, nil
	}

	vectors, err := g.backend.Embeddings(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed: backend returned %d vectors for %d inputs", len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedOne embeds a single text.
func (g *Gateway) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	vectors, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
