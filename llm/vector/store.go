package vector

import (
	"context"

	"pdf-analyzer/llm"
)

// Index defines the nearest-neighbour index built over chunk embeddings.
// An index lives for one run only.
type Index interface {
	// Add inserts chunks with their vectors; len(chunks) must equal len(vectors)
	Add(ctx context.Context, chunks []llm.Chunk, vectors [][]float32) error

	// Search returns the topK chunks closest to the query vector, best first
	Search(ctx context.Context, query []float32, topK int) ([]llm.SearchResult, error)

	// Count returns the number of indexed chunks
	Count(ctx context.Context) (int64, error)

	// Close releases the index and everything stored in it
	Close() error
}

const (
	defaultTopK = 5
	maxTopK     = 100
)

func clampTopK(topK int) int {
	if topK <= 0 {
		return defaultTopK
	}
	if topK > maxTopK {
		return maxTopK
	}
	return topK
}
