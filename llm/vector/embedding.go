package vector

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
)

const defaultBatchSize = 64

// EmbeddingService wraps an embedding model for vector generation
type EmbeddingService struct {
	embedder  embedding.Embedder
	batchSize int
	dim       int
}

// NewEmbeddingService creates a new embedding service. A batchSize of zero
// or less uses the default.
func NewEmbeddingService(embedder embedding.Embedder, batchSize int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &EmbeddingService{
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// Embed generates an embedding vector for a single text
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates one vector per text, in input order
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := s.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), end-start)
		}

		for _, vec := range vectors {
			if len(vec) == 0 {
				return nil, fmt.Errorf("empty embedding returned")
			}
			if s.dim == 0 {
				s.dim = len(vec)
			}
			if len(vec) != s.dim {
				return nil, fmt.Errorf("embedding dimension changed: got %d, want %d", len(vec), s.dim)
			}
			result = append(result, toFloat32(vec))
		}
	}

	return result, nil
}

// Dimension returns the embedding dimension, or zero before the first call
func (s *EmbeddingService) Dimension() int {
	return s.dim
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
