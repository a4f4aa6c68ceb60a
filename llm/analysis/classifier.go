package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	DefaultClassifyMaxChars = 3000
	DefaultSummaryMaxChars  = 4000
)

// Config bounds how much document text is sent to the model
type Config struct {
	ClassifyMaxChars int
	SummaryMaxChars  int
}

// DefaultConfig returns the default analysis limits
func DefaultConfig() Config {
	return Config{
		ClassifyMaxChars: DefaultClassifyMaxChars,
		SummaryMaxChars:  DefaultSummaryMaxChars,
	}
}

// Classifier asks the model for a JSON classification of a document
type Classifier struct {
	completer Completer
	template  prompt.ChatTemplate
	maxChars  int
	logger    *slog.Logger
}

// NewClassifier creates a classifier that truncates input to cfg.ClassifyMaxChars
func NewClassifier(completer Completer, cfg Config, logger *slog.Logger) *Classifier {
	if cfg.ClassifyMaxChars <= 0 {
		cfg.ClassifyMaxChars = DefaultClassifyMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		completer: completer,
		template:  prompt.FromMessages(schema.FString, schema.UserMessage(classifyPrompt)),
		maxChars:  cfg.ClassifyMaxChars,
		logger:    logger.With("component", "classifier"),
	}
}

// Classify makes a single model call. It never fails: request errors and
// unparsable replies come back as degraded classifications.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	messages, err := c.template.Format(ctx, map[string]any{
		"text": truncate(text, c.maxChars),
	})
	if err != nil {
		c.logger.Error("Error in categorization", "error", err)
		return Classification{Error: err.Error()}
	}

	reply, err := c.completer.Complete(ctx, messages)
	if err != nil {
		c.logger.Error("Error in categorization", "error", err)
		return Classification{Error: err.Error()}
	}

	return ParseClassification(reply)
}

// ParseClassification decodes a model reply. Anything that is not a JSON
// object yields {raw_analysis: reply} with the reply kept verbatim. Fields of
// the wrong JSON type are coerced rather than rejected.
func ParseClassification(reply string) Classification {
	body := bytes.TrimSpace([]byte(stripCodeFence(reply)))
	if len(body) == 0 || body[0] != '{' {
		return Classification{RawAnalysis: reply}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Classification{RawAnalysis: reply}
	}
	return fromFields(fields)
}

// stripCodeFence removes one surrounding ``` block, with or without a language tag
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.HasPrefix(strings.TrimSpace(t[:nl]), "{") {
		t = t[nl+1:]
	}
	return t
}
