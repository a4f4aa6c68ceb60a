package vector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pdf-analyzer/llm"
)

// MemoryIndex is a brute-force cosine index held in process memory
type MemoryIndex struct {
	chunks  []llm.Chunk
	vectors [][]float32
	dim     int
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add inserts chunks with their vectors
func (m *MemoryIndex) Add(ctx context.Context, chunks []llm.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk and vector counts differ: %d != %d", len(chunks), len(vectors))
	}

	for i, vec := range vectors {
		if m.dim == 0 {
			m.dim = len(vec)
		}
		if len(vec) != m.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(vec), m.dim)
		}
	}

	m.chunks = append(m.chunks, chunks...)
	m.vectors = append(m.vectors, vectors...)
	return nil
}

// Search returns the topK most similar chunks by cosine similarity
func (m *MemoryIndex) Search(ctx context.Context, query []float32, topK int) ([]llm.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if m.dim != 0 && len(query) != m.dim {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), m.dim)
	}

	results := make([]llm.SearchResult, 0, len(m.chunks))
	for i, vec := range m.vectors {
		results = append(results, llm.SearchResult{
			Chunk: m.chunks[i],
			Score: cosine(query, vec),
		})
	}

	// stable keeps insertion order between equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k := clampTopK(topK); len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of indexed chunks
func (m *MemoryIndex) Count(ctx context.Context) (int64, error) {
	return int64(len(m.chunks)), nil
}

// Close drops all indexed data
func (m *MemoryIndex) Close() error {
	m.chunks = nil
	m.vectors = nil
	return nil
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
