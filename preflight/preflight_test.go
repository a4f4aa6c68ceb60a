package preflight

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"pdf-analyzer/config"

	"github.com/stretchr/testify/assert"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	root := t.TempDir()
	cfg.InputDir = root
	cfg.OutputDir = root
	return &cfg
}

func TestFolders(t *testing.T) {
	cfg := testConfig(t)
	assert.True(t, Folders(cfg).Passed)

	cfg.OutputDir = filepath.Join(cfg.InputDir, "missing")
	r := Folders(cfg)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Notes[1], "missing folder missing")
}

func TestCredential(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		passed   bool
		lastNote string
	}{
		{"missing", "", false, "  Or create a .env file with your API key"},
		{"well formed", "sk-abc", true, "o API key format looks correct"},
		{"odd format", "abc", true, "Warning: API key format may be incorrect (should start with 'sk-')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.LLM.APIKey = tt.key

			r := Credential(cfg)
			assert.Equal(t, tt.passed, r.Passed)
			assert.Equal(t, tt.lastNote, r.Notes[len(r.Notes)-1])
		})
	}
}

func TestRunReportsFailures(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	ok := Run(context.Background(), cfg, &out)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "Warning: OPENAI_API_KEY environment variable not set")
	assert.Contains(t, out.String(), "Some tests failed.")
	assert.Contains(t, out.String(), "memory index needs no server")
}

func TestRunAllPassed(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.APIKey = "sk-test"
	var out bytes.Buffer

	assert.True(t, Run(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "All tests passed!")
}
