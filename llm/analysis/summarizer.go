package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Summarizer requests a free-text summary shaped by the document category
type Summarizer struct {
	completer Completer
	templates map[Category]prompt.ChatTemplate
	maxChars  int
	logger    *slog.Logger
}

// NewSummarizer creates a summarizer that truncates input to cfg.SummaryMaxChars
func NewSummarizer(completer Completer, cfg Config, logger *slog.Logger) *Summarizer {
	if cfg.SummaryMaxChars <= 0 {
		cfg.SummaryMaxChars = DefaultSummaryMaxChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		completer: completer,
		templates: map[Category]prompt.ChatTemplate{
			TaskLike:  prompt.FromMessages(schema.FString, schema.UserMessage(taskSummaryPrompt)),
			StoryLike: prompt.FromMessages(schema.FString, schema.UserMessage(storySummaryPrompt)),
			General:   prompt.FromMessages(schema.FString, schema.UserMessage(generalSummaryPrompt)),
		},
		maxChars: cfg.SummaryMaxChars,
		logger:   logger.With("component", "summarizer"),
	}
}

// Summarize makes a single model call and returns its text. A failed call
// returns a readable error message in place of the summary.
func (s *Summarizer) Summarize(ctx context.Context, text string, category Category) string {
	template, ok := s.templates[category]
	if !ok {
		template = s.templates[General]
	}

	messages, err := template.Format(ctx, map[string]any{
		"text": truncate(text, s.maxChars),
	})
	if err != nil {
		return s.failed(err)
	}

	summary, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return s.failed(err)
	}
	return summary
}

func (s *Summarizer) failed(err error) string {
	s.logger.Error("Error generating summary", "error", err)
	return fmt.Sprintf("%s %v", SummaryErrorPrefix, err)
}
