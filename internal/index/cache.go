package index

import (
	"context"
	"sync"

	"github.com/clauselens/clauselens/internal/embed"
)

// QueryCache memoizes query embeddings per (document ID, exact query string)
// for the process lifetime. The key is the literal query text; distinct
// phrasings are distinct entries. A race between two misses for the same
// query may embed twice, which costs an extra call but both results are
// equivalent, so the last write wins harmlessly.
type QueryCache struct {
	gateway *embed.Gateway

	mu     sync.RWMutex
	perDoc map[string]map[string][]float64
}

func NewQueryCache(gateway *embed.Gateway) *QueryCache {
	return &QueryCache{
		gateway: gateway,
		perDoc:  make(map[string]map[string][]float64),
	}
}

// Embedding returns the cached vector for the query, embedding it on first
// use.
func (c *QueryCache) Embedding(ctx context.Context, docID, query string) ([]float64, error) {
	c.mu.RLock()
	if vec, ok := c.perDoc[docID][query]; ok {
		c.mu.RUnlock()
		return vec, nil
	}
	c.mu.RUnlock()

	vec, err := c.gateway.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.perDoc[docID] == nil {
		c.perDoc[docID] = make(map[string][]float64)
	}
	c.perDoc[docID][query] = vec
	c.mu.Unlock()
	return vec, nil
}
