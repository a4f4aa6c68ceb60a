package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no config file is given and it exists
	DefaultPath = "pdf-analyzer.yaml"

	configPathEnv = "PDF_ANALYZER_CONFIG"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrMissingCredential means the model API key env var is empty
var ErrMissingCredential = errors.New("model API key is not set")

// Config holds every setting of a run
type Config struct {
	InputDir  string          `yaml:"input_dir"`
	OutputDir string          `yaml:"output_dir"`
	Pattern   string          `yaml:"pattern"`
	LogLevel  string          `yaml:"log_level"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Index     IndexConfig     `yaml:"index"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// LLMConfig selects the chat model used for classification and summaries
type LLMConfig struct {
	Provider    string   `yaml:"provider"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`

	APIKey string `yaml:"-"`
}

// EmbeddingConfig selects the embedding model used for the similarity index
type EmbeddingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`

	APIKey string `yaml:"-"`
}

// ChunkConfig controls chunk windows
type ChunkConfig struct {
	Size             int  `yaml:"size"`
	Overlap          int  `yaml:"overlap"`
	SplitByParagraph bool `yaml:"split_by_paragraph"`
}

// IndexConfig selects the similarity index backend
type IndexConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig describes the Redis Stack server used by the redis backend
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
	IndexPrefix string `yaml:"index_prefix"`
}

// AnalysisConfig bounds how much text goes to the model
type AnalysisConfig struct {
	ClassifyMaxChars int `yaml:"classify_max_chars"`
	SummaryMaxChars  int `yaml:"summary_max_chars"`
}

// TracingConfig enables CozeLoop tracing; credentials come from the environment
type TracingConfig struct {
	CozeLoop bool `yaml:"cozeloop"`

	APIToken    string `yaml:"-"`
	WorkspaceID string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		InputDir:  "pdf-inputs",
		OutputDir: "outputs",
		Pattern:   "*.pdf",
		LogLevel:  "info",
		LLM: LLMConfig{
			Provider:  "openai",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Embedding: EmbeddingConfig{
			Enabled: true,
		},
		Chunk: ChunkConfig{
			Size:    1000,
			Overlap: 200,
		},
		Index: IndexConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:        "localhost:6379",
				PoolSize:    10,
				IndexPrefix: "pdf-analyzer",
			},
		},
		Analysis: AnalysisConfig{
			ClassifyMaxChars: 3000,
			SummaryMaxChars:  4000,
		},
	}
}

// Load reads defaults, then the YAML file at path, then environment
// overrides. An empty path falls back to $PDF_ANALYZER_CONFIG and then
// DefaultPath, either of which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(configPathEnv)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.resolveSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.InputDir, "PDF_ANALYZER_INPUT_DIR")
	setString(&c.OutputDir, "PDF_ANALYZER_OUTPUT_DIR")
	setString(&c.Pattern, "PDF_ANALYZER_PATTERN")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")

	setString(&c.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	setString(&c.Embedding.Model, "EMBEDDING_MODEL")

	setInt(&c.Chunk.Size, "CHUNK_SIZE")
	setInt(&c.Chunk.Overlap, "CHUNK_OVERLAP")

	setString(&c.Index.Backend, "INDEX_BACKEND")
	setString(&c.Index.Redis.Addr, "REDIS_ADDR")
	setString(&c.Index.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Index.Redis.DB, "REDIS_DB")
}

func (c *Config) resolveSecrets() {
	if c.LLM.APIKeyEnv != "" {
		c.LLM.APIKey = os.Getenv(c.LLM.APIKeyEnv)
	}

	c.Embedding.APIKey = c.LLM.APIKey
	if c.Embedding.APIKeyEnv != "" {
		c.Embedding.APIKey = os.Getenv(c.Embedding.APIKeyEnv)
	}
	if c.Embedding.BaseURL == "" && c.LLM.Provider != "gemini" {
		c.Embedding.BaseURL = c.LLM.BaseURL
	}

	c.Tracing.APIToken = os.Getenv("COZE_LOOP_API_TOKEN")
	c.Tracing.WorkspaceID = os.Getenv("COZELOOP_WORKSPACE_ID")
}

// Validate rejects settings no run could use. A missing API key is not an
// error here; callers check it with RequireCredential.
func (c *Config) Validate() error {
	if c.InputDir == "" || c.OutputDir == "" {
		return fmt.Errorf("input_dir and output_dir must be set")
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Index.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown index backend %q", c.Index.Backend)
	}
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Chunk.Size)
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.Chunk.Size, c.Chunk.Overlap)
	}
	return nil
}

// RequireCredential returns ErrMissingCredential naming the env var when
// the model API key is empty
func (c *Config) RequireCredential() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: %s environment variable not set", ErrMissingCredential, c.LLM.APIKeyEnv)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
