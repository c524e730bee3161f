package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/clauselens/clauselens/internal/doc"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 6

// CosineSimilarity computes the cosine of the angle between a and b. A zero
// magnitude on either side yields 0 rather than NaN.
func CosineSimilarity(a, b []float64) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Search ranks chunks by cosine similarity against the query vector and
// returns at most topK of them, best first. Ties keep document order.
//
// An all-zero query vector means the embedding gateway is degraded; ranking
// is meaningless then, so the first topK chunks are returned in document
// order as a deterministic fallback.
func Search(query []float64, chunks []doc.Chunk, vectors [][]float64, topK int) ([]doc.Chunk, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("search: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	if isZero(query) {
		if topK > len(chunks) {
			topK = len(chunks)
		}
		out := make([]doc.Chunk, topK)
		copy(out, chunks[:topK])
		return out, nil
	}

	for i, v := range vectors {
		if len(v) != len(query) {
			return nil, fmt.Errorf("search: vector %d has dimension %d, query has %d", i, len(v), len(query))
		}
	}

	order := make([]int, len(chunks))
	scores := make([]float64, len(chunks))
	for i, v := range vectors {
		order[i] = i
		scores[i] = CosineSimilarity(query, v)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	out := make([]doc.Chunk, 0, topK)
	for _, idx := range order[:topK] {
		out = append(out, chunks[idx])
	}
	return out, nil
}

func isZero(v []float64) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
