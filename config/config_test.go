package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, "OPENAI_API_KEY", "CHUNK_SIZE", "CHUNK_OVERLAP", "REDIS_ADDR",
		"PDF_ANALYZER_INPUT_DIR", "INDEX_BACKEND", "LLM_PROVIDER", "LLM_BASE_URL",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pdf-inputs", cfg.InputDir)
	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.Equal(t, "*.pdf", cfg.Pattern)
	assert.Equal(t, 1000, cfg.Chunk.Size)
	assert.Equal(t, 200, cfg.Chunk.Overlap)
	assert.Equal(t, 3000, cfg.Analysis.ClassifyMaxChars)
	assert.Equal(t, 4000, cfg.Analysis.SummaryMaxChars)
	assert.Equal(t, BackendMemory, cfg.Index.Backend)

	err = cfg.RequireCredential()
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input_dir: docs
pattern: "**/*.txt"
llm:
  model: gpt-4.1-mini
  temperature: 0.1
chunk:
  size: 800
index:
  backend: redis
`), 0o644))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LLM_BASE_URL", "https://example.test/v1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.InputDir)
	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.Equal(t, "**/*.txt", cfg.Pattern)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	require.NotNil(t, cfg.LLM.Temperature)
	assert.InDelta(t, 0.1, *cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 800, cfg.Chunk.Size)
	assert.Equal(t, 100, cfg.Chunk.Overlap)
	assert.Equal(t, BackendRedis, cfg.Index.Backend)
	assert.Equal(t, "redis:6379", cfg.Index.Redis.Addr)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "https://example.test/v1", cfg.Embedding.BaseURL)
	assert.NoError(t, cfg.RequireCredential())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(dir, "nope.yaml")},
		{"bad yaml", write("bad.yaml", "input_dir: [")},
		{"unknown provider", write("p.yaml", "llm:\n  provider: llama\n")},
		{"unknown backend", write("b.yaml", "index:\n  backend: faiss\n")},
		{"overlap too large", write("o.yaml", "chunk:\n  size: 100\n  overlap: 100\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			assert.Error(t, err)
		})
	}
}
