package vector

import (
	"context"
	"fmt"

	"pdf-analyzer/llm"
)

// IndexFactory opens a fresh, empty index
type IndexFactory func(ctx context.Context) (Index, error)

// MemoryIndexFactory opens in-memory indexes
func MemoryIndexFactory(ctx context.Context) (Index, error) {
	return NewMemoryIndex(), nil
}

// RedisIndexFactory opens run-scoped Redis indexes with cfg
func RedisIndexFactory(cfg RedisConfig) IndexFactory {
	return func(ctx context.Context) (Index, error) {
		return NewRedisIndex(ctx, cfg)
	}
}

// Builder embeds chunks and loads them into a new index
type Builder struct {
	embeddings *EmbeddingService
	newIndex   IndexFactory
}

// NewBuilder creates a builder; a nil factory means an in-memory index
func NewBuilder(embeddings *EmbeddingService, newIndex IndexFactory) *Builder {
	if newIndex == nil {
		newIndex = MemoryIndexFactory
	}
	return &Builder{
		embeddings: embeddings,
		newIndex:   newIndex,
	}
}

// Build returns an index holding every chunk. On error no index is returned
// and anything partially built is released.
func (b *Builder) Build(ctx context.Context, chunks []llm.Chunk) (Index, error) {
	if b.embeddings == nil {
		return nil, fmt.Errorf("embedding service is not configured")
	}

	index, err := b.newIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	if len(chunks) == 0 {
		return index, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := b.embeddings.EmbedBatch(ctx, texts)
	if err != nil {
		index.Close()
		return nil, err
	}

	if err := index.Add(ctx, chunks, vectors); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to populate index: %w", err)
	}

	return index, nil
}
