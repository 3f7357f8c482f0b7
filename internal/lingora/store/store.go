package store

import (
	"context"
	"sync"
)

// Document is one indexed chunk together with its provenance.
type Document struct {
	// ID is the chunk identifier.
	ID string
	// Source is the file the chunk came from.
	Source string
	// Lang is the ISO 639-1 language code of the chunk text.
	Lang string
	// Content is the chunk text.
	Content string
	// Embedding is the chunk embedding vector.
	Embedding []float32
}

// SearchResult is one retrieval hit.
type SearchResult struct {
	// ID is the chunk identifier.
	ID string
	// Source is the file the chunk came from.
	Source string
	// Lang is the ISO 639-1 language code of the chunk text.
	Lang string
	// Content is the chunk text.
	Content string
	// Score is the similarity score, higher is closer.
	Score float32
}

// VectorIndex is a sealed, searchable snapshot of the document corpus.
type VectorIndex interface {
	// Search returns the topK nearest documents to the embedding.
	Search(ctx context.Context, embedding []float32, topK int) ([]*SearchResult, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int64, error)

	// Release frees the resources behind this snapshot.
	Release(ctx context.Context) error
}

// IndexBuilder assembles a new VectorIndex from scratch. A successfully
// built index is fully populated before anyone can search it.
type IndexBuilder interface {
	// Build creates a fresh index holding exactly the given documents.
	Build(ctx context.Context, docs []*Document) (VectorIndex, error)

	// Close releases the builder's backing connection.
	Close(ctx context.Context) error
}

// Handle is the atomically swappable reference to the live index.
// Readers always observe either the previous complete snapshot or the
// new one, never a partially built index.
type Handle struct {
	mu  sync.RWMutex
	idx VectorIndex
}

// NewHandle returns a handle with no index loaded yet.
func NewHandle() *Handle {
	return &Handle{}
}

// Index returns the current snapshot, or nil before the first swap.
func (h *Handle) Index() VectorIndex {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.idx
}

// Swap installs idx as the live snapshot and returns the previous one
// so the caller can release it.
func (h *Handle) Swap(idx VectorIndex) VectorIndex {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.idx
	h.idx = idx
	return old
}
