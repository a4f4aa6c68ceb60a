package vector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"pdf-analyzer/llm"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextWindows(t *testing.T) {
	text := strings.Repeat("abcdefghij", 250) // 2500 runes
	chunks := ChunkText(text, ChunkConfig{ChunkSize: 1000, ChunkOverlap: 200})

	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:1000], chunks[0])
	assert.Equal(t, text[800:1800], chunks[1])
	assert.Equal(t, text[1600:2500], chunks[2])
}

func TestChunkConfigDefaults(t *testing.T) {
	assert.Equal(t, ChunkConfig{ChunkSize: 1000, ChunkOverlap: 200}, ChunkConfig{}.normalize())

	text := strings.Repeat("abcdefghij", 250)
	assert.Equal(t, ChunkText(text, ChunkConfig{ChunkSize: 1000, ChunkOverlap: 200}), ChunkText(text, ChunkConfig{}))
}

func TestChunkTextIsDeterministic(t *testing.T) {
	text := strings.Repeat("Paragraph about the harbour and the ships.\n\n", 80)

	for _, byParagraph := range []bool{false, true} {
		cfg := ChunkConfig{ChunkSize: 300, ChunkOverlap: 60, SplitByParagraph: byParagraph}
		assert.Equal(t, ChunkText(text, cfg), ChunkText(text, cfg))
	}
}

func TestChunkTextBounds(t *testing.T) {
	text := strings.Repeat("日本語のテキスト。", 300) + "\n\n" + strings.Repeat("word ", 500)

	tests := []struct {
		name string
		cfg  ChunkConfig
	}{
		{"window", ChunkConfig{ChunkSize: 200, ChunkOverlap: 40}},
		{"paragraph", ChunkConfig{ChunkSize: 200, ChunkOverlap: 40, SplitByParagraph: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(text, tt.cfg)
			require.NotEmpty(t, chunks)
			for _, c := range chunks {
				assert.LessOrEqual(t, utf8.RuneCountInString(c), tt.cfg.ChunkSize)
				assert.NotEmpty(t, strings.TrimSpace(c))
			}
		})
	}
}

func TestChunkTextEdgeCases(t *testing.T) {
	assert.Empty(t, ChunkText("   \n ", ChunkConfig{ChunkSize: 10}))
	assert.Equal(t, []string{"short"}, ChunkText("short", ChunkConfig{ChunkSize: 1000, ChunkOverlap: 200}))

	// overlap >= size must not loop forever
	chunks := ChunkText(strings.Repeat("x", 50), ChunkConfig{ChunkSize: 10, ChunkOverlap: 10})
	assert.NotEmpty(t, chunks)
}

func TestChunkPagesKeepsPagesApart(t *testing.T) {
	pages := []llm.Page{
		{Text: strings.Repeat("a", 15), SourceFile: "one.pdf", PageIndex: 0},
		{Text: strings.Repeat("b", 5), SourceFile: "one.pdf", PageIndex: 1},
		{Text: "", SourceFile: "two.pdf", PageIndex: 0},
	}

	chunks := ChunkPages(pages, ChunkConfig{ChunkSize: 10, ChunkOverlap: 2})
	require.Len(t, chunks, 3)

	assert.Equal(t, "aaaaaaaaaa", chunks[0].Text)
	assert.Equal(t, "aaaaaaa", chunks[1].Text)
	assert.Equal(t, "bbbbb", chunks[2].Text)
	assert.Equal(t, 1, chunks[2].PageIndex)
	for _, c := range chunks {
		assert.Equal(t, "one.pdf", c.SourceFile)
		assert.NotContains(t, c.Text, "ab")
	}
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}

// fakeEmbedder maps each text to a vector of its length and first byte
type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t)), float64(t[0])}
	}
	return out, nil
}

func TestEmbeddingServiceBatches(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := NewEmbeddingService(fake, 2)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "e"})
	require.NoError(t, err)
	assert.Equal(t, 3, fake.calls)
	require.Len(t, vectors, 5)
	assert.Equal(t, []float32{3, 'c'}, vectors[2])
	assert.Equal(t, 2, svc.Dimension())

	_, err = svc.Embed(context.Background(), "")
	assert.Error(t, err)
}

func TestMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	chunks := []llm.Chunk{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	vectors := [][]float32{{1, 0}, {0, 1}, {0.9, 0.1}}
	require.NoError(t, idx.Add(ctx, chunks, vectors))

	results, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x", results[0].Chunk.ID)
	assert.Equal(t, "z", results[1].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	_, err = idx.Search(ctx, []float32{1, 0, 0}, 1)
	assert.Error(t, err)
	assert.Error(t, idx.Add(ctx, []llm.Chunk{{ID: "w"}}, nil))
}

func TestBuilderBuild(t *testing.T) {
	ctx := context.Background()
	chunks := ChunkPages([]llm.Page{{Text: strings.Repeat("q", 30), SourceFile: "f.pdf"}}, ChunkConfig{ChunkSize: 10, ChunkOverlap: 0})

	t.Run("indexes every chunk", func(t *testing.T) {
		idx, err := NewBuilder(NewEmbeddingService(&fakeEmbedder{}, 0), nil).Build(ctx, chunks)
		require.NoError(t, err)
		defer idx.Close()

		count, err := idx.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, len(chunks), count)
	})

	t.Run("embedding failure yields no index", func(t *testing.T) {
		fake := &fakeEmbedder{err: errors.New("service unavailable")}
		idx, err := NewBuilder(NewEmbeddingService(fake, 0), nil).Build(ctx, chunks)
		assert.Error(t, err)
		assert.Nil(t, idx)
	})

	t.Run("missing embedder", func(t *testing.T) {
		_, err := NewBuilder(nil, nil).Build(ctx, chunks)
		assert.Error(t, err)
	})
}

func TestVectorEncoding(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	data := encodeVector(in)
	assert.Len(t, data, 12)

	out, err := decodeVector(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestParseSearchResults(t *testing.T) {
	reply := []interface{}{
		int64(2),
		"pdf-analyzer:abc:notes.pdf#0#1",
		[]interface{}{"text", "hello", "source_file", "notes.pdf", "page_index", "0", "chunk_index", "1", "score", "0.25"},
		"pdf-analyzer:abc:notes.pdf#1#0",
		[]interface{}{"text", "world", "score", "0.5"},
	}

	results, err := parseSearchResults(reply, "pdf-analyzer:abc:")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "notes.pdf#0#1", results[0].Chunk.ID)
	assert.Equal(t, "hello", results[0].Chunk.Text)
	assert.Equal(t, 1, results[0].Chunk.ChunkIndex)
	assert.InDelta(t, 0.75, results[0].Score, 1e-6)
	assert.InDelta(t, 0.5, results[1].Score, 1e-6)

	_, err = parseSearchResults("nope", "")
	assert.Error(t, err)
}
