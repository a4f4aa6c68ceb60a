package analysis

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Completer sends prompt messages to a language model and returns its text reply
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message) (string, error)
}

// Urgency levels the classifier asks for
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyNone   = "none"
)

// DefaultContentType is used when the model gives no content type
const DefaultContentType = "general"

// Classification is the model's structured judgment of one document. On a
// parse failure only RawAnalysis is set; on a request failure only Error.
// Extra holds the keys the model returned beyond the schema.
type Classification struct {
	ContentType  string
	MainTopics   []string
	KeyEntities  []string
	UrgencyLevel string
	ActionItems  []string
	Summary      string
	RawAnalysis  string
	Error        string
	Extra        map[string]any
}

// Degraded reports whether the classification is a parse or request failure
func (c Classification) Degraded() bool {
	return c.RawAnalysis != "" || c.Error != ""
}

// ResolvedContentType returns the content type, or DefaultContentType when empty
func (c Classification) ResolvedContentType() string {
	if strings.TrimSpace(c.ContentType) == "" {
		return DefaultContentType
	}
	return c.ContentType
}

// SummaryErrorPrefix starts the text a failed summary request leaves in
// place of the summary
const SummaryErrorPrefix = "Error generating summary:"

// IsSummaryError reports whether summary is the text of a failed request
func IsSummaryError(summary string) bool {
	return strings.HasPrefix(summary, SummaryErrorPrefix)
}

// Category selects the summary template and report section for a document
type Category int

const (
	General Category = iota
	TaskLike
	StoryLike
)

var (
	taskTypes  = map[string]struct{}{"task": {}, "action": {}, "todo": {}}
	storyTypes = map[string]struct{}{"story": {}, "narrative": {}, "fiction": {}}
)

// CategoryOf matches a content type case-insensitively against the task and
// story vocabularies. Only whole values match: "task list" is General.
func CategoryOf(contentType string) Category {
	key := strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := taskTypes[key]; ok {
		return TaskLike
	}
	if _, ok := storyTypes[key]; ok {
		return StoryLike
	}
	return General
}

func (c Category) String() string {
	switch c {
	case TaskLike:
		return "task"
	case StoryLike:
		return "story"
	default:
		return "general"
	}
}

// truncate keeps at most limit characters of text
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
