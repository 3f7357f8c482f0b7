package store

import (
	"context"
	"math"
	"sort"
)

// MemoryBuilder builds in-process indexes. It backs local development
// and tests where no Milvus instance is available.
type MemoryBuilder struct{}

// NewMemoryBuilder returns a builder for in-memory indexes.
func NewMemoryBuilder() *MemoryBuilder {
	return &MemoryBuilder{}
}

// Build implements IndexBuilder. The documents slice is copied so later
// mutation by the caller cannot reach the snapshot.
func (b *MemoryBuilder) Build(ctx context.Context, docs []*Document) (VectorIndex, error) {
	snapshot := make([]*Document, len(docs))
	copy(snapshot, docs)
	return &memoryIndex{docs: snapshot}, nil
}

// Close implements IndexBuilder.
func (b *MemoryBuilder) Close(ctx context.Context) error {
	return nil
}

// memoryIndex is an immutable snapshot searched by cosine similarity.
type memoryIndex struct {
	docs []*Document
}

func (m *memoryIndex) Search(ctx context.Context, embedding []float32, topK int) ([]*SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	results := make([]*SearchResult, 0, len(m.docs))
	for _, d := range m.docs {
		results = append(results, &SearchResult{
			ID:      d.ID,
			Source:  d.Source,
			Lang:    d.Lang,
			Content: d.Content,
			Score:   cosineSimilarity(embedding, d.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *memoryIndex) Count(ctx context.Context) (int64, error) {
	return int64(len(m.docs)), nil
}

func (m *memoryIndex) Release(ctx context.Context) error {
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
