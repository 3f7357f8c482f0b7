package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []*Document {
	return []*Document{
		{ID: "a", Source: "a.txt", Lang: "fr", Content: "alpha", Embedding: []float32{1, 0, 0}},
		{ID: "b", Source: "b.txt", Lang: "en", Content: "beta", Embedding: []float32{0, 1, 0}},
		{ID: "c", Source: "c.txt", Lang: "fr", Content: "gamma", Embedding: []float32{0.9, 0.1, 0}},
	}
}

func TestMemoryIndexSearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryBuilder().Build(ctx, testDocs())
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
	assert.Equal(t, "b", results[2].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestMemoryIndexSearchTopK(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryBuilder().Build(ctx, testDocs())
	require.NoError(t, err)

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)

	results, err = idx.Search(ctx, []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryIndexCount(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryBuilder().Build(ctx, testDocs())
	require.NoError(t, err)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryIndexSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	docs := testDocs()
	idx, err := NewMemoryBuilder().Build(ctx, docs)
	require.NoError(t, err)

	docs[0] = nil
	docs = docs[:1]

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(cosineSimilarity([]float32{1, 2}, []float32{2, 4})), 1e-6)
	assert.InDelta(t, 0.0, float64(cosineSimilarity([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity(nil, nil))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestHandleSwap(t *testing.T) {
	ctx := context.Background()
	h := NewHandle()
	assert.Nil(t, h.Index())

	first, err := NewMemoryBuilder().Build(ctx, testDocs())
	require.NoError(t, err)
	old := h.Swap(first)
	assert.Nil(t, old)
	assert.Same(t, first, h.Index())

	second, err := NewMemoryBuilder().Build(ctx, nil)
	require.NoError(t, err)
	old = h.Swap(second)
	assert.Same(t, first, old)
	assert.Same(t, second, h.Index())
}
