package index

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauselens/clauselens/internal/doc"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5, 0.01}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_OppositeIsMinusOne(t *testing.T) {
	v := []float64{1, 2, 3}
	neg := []float64{-1, -2, -3}
	assert.InDelta(t, -1.0, CosineSimilarity(v, neg), 1e-9)
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float64{0.5, 1.5, -2}
	b := []float64{3, -1, 0.25}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarity_ZeroVectorIsZero(t *testing.T) {
	zero := []float64{0, 0, 0}
	v := []float64{1, 2, 3}
	got := CosineSimilarity(zero, v)
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsNaN(got))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
}

func testCorpus(n, dim int) ([]doc.Chunk, [][]float64) {
	chunks := make([]doc.Chunk, n)
	vectors := make([][]float64, n)
	for i := range chunks {
		chunks[i] = doc.Chunk{ID: fmt.Sprintf("c%d", i), Text: fmt.Sprintf("chunk %d", i)}
		v := make([]float64, dim)
		v[i%dim] = 1
		v[(i+1)%dim] = float64(i) / 10
		vectors[i] = v
	}
	return chunks, vectors
}

func TestSearch_ExactMatchRanksFirst(t *testing.T) {
	chunks, vectors := testCorpus(10, 16)

	query := append([]float64(nil), vectors[3]...)
	got, err := Search(query, chunks, vectors, 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "c3", got[0].ID)
}

func TestSearch_TopKBoundsResults(t *testing.T) {
	chunks, vectors := testCorpus(10, 16)
	got, err := Search(vectors[0], chunks, vectors, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearch_TopKLargerThanCorpus(t *testing.T) {
	chunks, vectors := testCorpus(4, 8)
	got, err := Search(vectors[1], chunks, vectors, 10)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestSearch_ZeroQueryReturnsDocumentOrder(t *testing.T) {
	chunks, vectors := testCorpus(10, 16)
	got, err := Search(make([]float64, 16), chunks, vectors, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, c := range got {
		assert.Equal(t, fmt.Sprintf("c%d", i), c.ID)
	}
}

func TestSearch_StableOrderOnTies(t *testing.T) {
	// All chunk vectors identical: every score ties, so results must keep
	// document order.
	chunks := make([]doc.Chunk, 5)
	vectors := make([][]float64, 5)
	for i := range chunks {
		chunks[i] = doc.Chunk{ID: fmt.Sprintf("c%d", i)}
		vectors[i] = []float64{1, 1}
	}
	got, err := Search([]float64{1, 0}, chunks, vectors, 5)
	require.NoError(t, err)
	for i, c := range got {
		assert.Equal(t, fmt.Sprintf("c%d", i), c.ID)
	}
}

func TestSearch_LengthMismatchFails(t *testing.T) {
	chunks, vectors := testCorpus(10, 16)
	_, err := Search(vectors[0], chunks, vectors[:9], 3)
	require.Error(t, err)
}

func TestSearch_DimensionMismatchFails(t *testing.T) {
	chunks, vectors := testCorpus(10, 16)
	_, err := Search([]float64{1, 2, 3}, chunks, vectors, 3)
	require.Error(t, err)
}
