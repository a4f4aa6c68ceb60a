package providers

import (
	"context"
	"fmt"

	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	geminiModel "github.com/cloudwego/eino-ext/components/model/gemini"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultOpenAIModel    = "gpt-4o-mini"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultTemperature    = float32(0.3)
)

// ChatModelConfig defines the configuration for creating a chat model.
type ChatModelConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
}

// NewChatModel creates the chat model selected by config.Provider.
// An empty BaseURL keeps the provider's public endpoint.
func NewChatModel(ctx context.Context, config *ChatModelConfig) (model.BaseChatModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required in config")
	}

	temperature := config.Temperature
	if temperature == nil {
		t := defaultTemperature
		temperature = &t
	}

	switch config.Provider {
	case "", ProviderOpenAI:
		modelName := config.Model
		if modelName == "" {
			modelName = defaultOpenAIModel
		}
		return openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
			APIKey:      config.APIKey,
			BaseURL:     config.BaseURL,
			Model:       modelName,
			Temperature: temperature,
		})

	case ProviderGemini:
		modelName := config.Model
		if modelName == "" {
			modelName = defaultGeminiModel
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		return geminiModel.NewChatModel(ctx, &geminiModel.Config{
			Client:      client,
			Model:       modelName,
			Temperature: temperature,
		})

	default:
		return nil, fmt.Errorf("unknown chat model provider: %q", config.Provider)
	}
}

// EmbeddingConfig defines the configuration for creating an embedding model.
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewEmbeddingModel creates an OpenAI-compatible embedding model from specific configuration.
func NewEmbeddingModel(ctx context.Context, config *EmbeddingConfig) (einoEmbedding.Embedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required in config")
	}

	modelName := config.Model
	if modelName == "" {
		modelName = defaultEmbeddingModel
	}

	return openaiEmbed.NewEmbedder(ctx, &openaiEmbed.EmbeddingConfig{
		APIKey:  config.APIKey,
		BaseURL: config.BaseURL,
		Model:   modelName,
	})
}
