package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/entity"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/pkg/component/milvus"
)

const insertBatchSize = 256

// MilvusBuilder builds versioned Milvus collections. Each Build creates
// a collection named "<base>_<suffix>", populates it completely and only
// then hands it out, so a swap never exposes a half filled index.
type MilvusBuilder struct {
	client    *milvus.Client
	base      string
	dimension int
	logger    *zap.Logger
}

// NewMilvusBuilder wraps an existing Milvus client.
func NewMilvusBuilder(client *milvus.Client, baseCollection string, dimension int, logger *zap.Logger) *MilvusBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MilvusBuilder{
		client:    client,
		base:      baseCollection,
		dimension: dimension,
		logger:    logger,
	}
}

// Build implements IndexBuilder.
func (b *MilvusBuilder) Build(ctx context.Context, docs []*Document) (VectorIndex, error) {
	name := fmt.Sprintf("%s_%s", b.base, strings.ReplaceAll(uuid.NewString()[:8], "-", ""))

	schema := &milvus.CollectionSchema{
		Name:        name,
		Description: "language tagged document chunks",
		Dimension:   b.dimension,
		MetaFields: []milvus.MetaField{
			{Name: "chunk_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "source", DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: "lang", DataType: entity.FieldTypeVarChar, MaxLen: 8},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 8192},
		},
	}
	if err := b.client.CreateCollection(ctx, schema); err != nil {
		return nil, fmt.Errorf("build index %s: %w", name, err)
	}

	for start := 0; start < len(docs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := b.insertBatch(ctx, name, docs[start:end]); err != nil {
			// Drop the partial collection, readers never saw it.
			if dropErr := b.client.DropCollection(ctx, name); dropErr != nil {
				b.logger.Warn("failed to drop partial collection",
					zap.String("collection", name), zap.Error(dropErr))
			}
			return nil, fmt.Errorf("build index %s: %w", name, err)
		}
	}

	b.logger.Info("built milvus index",
		zap.String("collection", name), zap.Int("documents", len(docs)))
	return &milvusIndex{client: b.client, collection: name}, nil
}

func (b *MilvusBuilder) insertBatch(ctx context.Context, collection string, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}
	data := &milvus.InsertData{
		Embeddings: make([][]float32, 0, len(docs)),
		Metadata: map[string][]any{
			"chunk_id": make([]any, 0, len(docs)),
			"source":   make([]any, 0, len(docs)),
			"lang":     make([]any, 0, len(docs)),
			"content":  make([]any, 0, len(docs)),
		},
	}
	for _, d := range docs {
		data.Embeddings = append(data.Embeddings, d.Embedding)
		data.Metadata["chunk_id"] = append(data.Metadata["chunk_id"], d.ID)
		data.Metadata["source"] = append(data.Metadata["source"], d.Source)
		data.Metadata["lang"] = append(data.Metadata["lang"], d.Lang)
		data.Metadata["content"] = append(data.Metadata["content"], d.Content)
	}
	_, err := b.client.Insert(ctx, collection, data)
	return err
}

// PruneStale drops every versioned collection under this builder's base
// name except keep. Used at startup to clear leftovers from crashed
// rebuilds.
func (b *MilvusBuilder) PruneStale(ctx context.Context, keep string) error {
	names, err := b.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("prune stale indexes: %w", err)
	}
	prefix := b.base + "_"
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) || name == keep {
			continue
		}
		if err := b.client.DropCollection(ctx, name); err != nil {
			b.logger.Warn("failed to drop stale collection",
				zap.String("collection", name), zap.Error(err))
			continue
		}
		b.logger.Info("dropped stale collection", zap.String("collection", name))
	}
	return nil
}

// Close implements IndexBuilder.
func (b *MilvusBuilder) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

// milvusIndex is one versioned collection snapshot.
type milvusIndex struct {
	client     *milvus.Client
	collection string
}

// Collection exposes the versioned collection name so the builder can
// prune everything else.
func (m *milvusIndex) Collection() string {
	return m.collection
}

var milvusOutputFields = []string{"chunk_id", "source", "lang", "content"}

func (m *milvusIndex) Search(ctx context.Context, embedding []float32, topK int) ([]*SearchResult, error) {
	hits, err := m.client.Search(ctx, m.collection, embedding, topK, milvusOutputFields)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", m.collection, err)
	}

	results := make([]*SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, &SearchResult{
			ID:      metaString(h.Metadata, "chunk_id"),
			Source:  metaString(h.Metadata, "source"),
			Lang:    metaString(h.Metadata, "lang"),
			Content: metaString(h.Metadata, "content"),
			Score:   h.Score,
		})
	}
	return results, nil
}

func (m *milvusIndex) Count(ctx context.Context) (int64, error) {
	return m.client.GetCollectionStats(ctx, m.collection)
}

func (m *milvusIndex) Release(ctx context.Context) error {
	return m.client.DropCollection(ctx, m.collection)
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
