package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pdf-analyzer/llm"
	"pdf-analyzer/llm/analysis"
	"pdf-analyzer/llm/parser"
	"pdf-analyzer/llm/vector"
	"pdf-analyzer/logging"
	"pdf-analyzer/pubsub"
	"pdf-analyzer/report"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedCompleter answers classification prompts from classify, keyed by a
// marker found in the document text, and every other prompt with summary
type routedCompleter struct {
	mu       sync.Mutex
	classify map[string]string
	summary  string
	err      error
	prompts  []string
}

func (r *routedCompleter) Complete(_ context.Context, messages []*schema.Message) (string, error) {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
	}
	prompt := b.String()

	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.mu.Unlock()

	if r.err != nil {
		return "", r.err
	}
	if strings.HasPrefix(prompt, "Analyze the following text and categorize it") {
		for marker, reply := range r.classify {
			if strings.Contains(prompt, marker) {
				return reply, nil
			}
		}
		return `{"content_type":"report"}`, nil
	}
	return r.summary, nil
}

type lenEmbedder struct{}

func (lenEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t)), 1}
	}
	return out, nil
}

type failingBuilder struct{}

func (failingBuilder) Build(context.Context, []llm.Chunk) (vector.Index, error) {
	return nil, errors.New("redis unavailable")
}

// recorder keeps every published event
type recorder struct {
	mu     sync.Mutex
	events []pubsub.Event[Progress]
}

func (r *recorder) Publish(t pubsub.EventType, p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, pubsub.Event[Progress]{Type: t, Payload: p})
}

func (r *recorder) ofType(t pubsub.EventType) []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Progress
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e.Payload)
		}
	}
	return out
}

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newAnalyzer(t *testing.T, completer analysis.Completer, builder IndexBuilder, events pubsub.Publisher[Progress]) (*Analyzer, string, string) {
	t.Helper()
	root := t.TempDir()
	in := filepath.Join(root, "pdf-inputs")
	out := filepath.Join(root, "outputs")
	logger := logging.Discard()

	cfg := analysis.DefaultConfig()
	orchestrator := NewOrchestrator(
		analysis.NewClassifier(completer, cfg, logger),
		analysis.NewSummarizer(completer, cfg, logger),
		events,
		logger,
	)
	orchestrator.now = func() time.Time { return fixedNow }

	a, err := New(Options{InputDir: in, OutputDir: out, Chunk: vector.ChunkConfig{ChunkSize: 50, ChunkOverlap: 10}}, Deps{
		Loader:       parser.NewLoader(parser.DefaultRegistry(), "*.{pdf,txt}", logger),
		IndexBuilder: builder,
		Orchestrator: orchestrator,
		Writer:       report.NewWriter(out, func() time.Time { return fixedNow }),
		Events:       events,
		Logger:       logger,
	})
	require.NoError(t, err)
	return a, in, out
}

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunTodoList(t *testing.T) {
	completer := &routedCompleter{
		classify: map[string]string{
			"Buy milk": `{"content_type":"task","action_items":["Buy milk","Call Alice by Friday"],"urgency_level":"medium"}`,
		},
		summary: "- Buy milk\n- Call Alice by Friday",
	}
	a, in, _ := newAnalyzer(t, completer, nil, nil)
	writeInput(t, in, "todo.txt", "To do: Buy milk. Call Alice by Friday.")

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Report)

	r := result.Report
	assert.Equal(t, 1, r.TotalDocuments)
	assert.Equal(t, []string{"todo.txt"}, r.FilesProcessed)
	require.Len(t, r.TaskLists, 1)
	assert.Equal(t, report.TaskEntry{
		File:    "todo.txt",
		Tasks:   []string{"Buy milk", "Call Alice by Friday"},
		Urgency: "medium",
		Summary: "- Buy milk\n- Call Alice by Friday",
	}, r.TaskLists[0])
	assert.Empty(t, r.Stories)
	assert.Equal(t, "task", r.Summaries["todo.txt"].ContentType)

	// second prompt is the task summary template
	require.Len(t, completer.prompts, 2)
	assert.True(t, strings.HasPrefix(completer.prompts[1], "Create a task-oriented summary"))

	assert.FileExists(t, result.Paths.JSON)
	assert.FileExists(t, result.Paths.Markdown)

	loaded, err := report.ReadJSON(result.Paths.JSON)
	require.NoError(t, err)
	assert.Equal(t, r.FilesProcessed, loaded.FilesProcessed)
	assert.Equal(t, r.TaskLists, loaded.TaskLists)
	assert.Equal(t, r.CategorizedContent, loaded.CategorizedContent)
}

func TestRunEmptyFolderWritesNothing(t *testing.T) {
	completer := &routedCompleter{}
	events := &recorder{}
	a, _, out := newAnalyzer(t, completer, nil, events)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Report)
	assert.Equal(t, 0, result.Pages)
	assert.Empty(t, completer.prompts)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Len(t, events.ofType(pubsub.FinishedEvent), 1)
}

func TestRunSkipsUnreadableFile(t *testing.T) {
	completer := &routedCompleter{summary: "ok"}
	a, in, _ := newAnalyzer(t, completer, nil, nil)
	writeInput(t, in, "bad.pdf", "this is not a pdf")
	writeInput(t, in, "good.txt", "Quarterly numbers went up.")

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"good.txt"}, result.Report.FilesProcessed)
	assert.Equal(t, 1, result.Report.TotalDocuments)
}

func TestRunCountsPagesAsDocuments(t *testing.T) {
	completer := &routedCompleter{summary: "ok"}
	a, in, _ := newAnalyzer(t, completer, nil, nil)
	writeInput(t, in, "paged.txt", "page one\fpage two\fpage three")

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Report.TotalDocuments)
	assert.Equal(t, []string{"paged.txt"}, result.Report.FilesProcessed)
	// one classification and one summary for the whole file
	assert.Len(t, completer.prompts, 2)
}

func TestRunIndexFailureIsNotFatal(t *testing.T) {
	completer := &routedCompleter{summary: "ok"}
	a, in, _ := newAnalyzer(t, completer, failingBuilder{}, nil)
	writeInput(t, in, "notes.txt", "Some meeting notes.")

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Indexed)
	assert.Positive(t, result.Chunks)
	assert.Equal(t, []string{"notes.txt"}, result.Report.FilesProcessed)
}

func TestRunBuildsIndex(t *testing.T) {
	completer := &routedCompleter{summary: "ok"}
	builder := vector.NewBuilder(vector.NewEmbeddingService(lenEmbedder{}, 0), vector.MemoryIndexFactory)
	events := &recorder{}
	a, in, _ := newAnalyzer(t, completer, builder, events)
	writeInput(t, in, "long.txt", strings.Repeat("lorem ipsum dolor ", 10))

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, result.Chunks)
	assert.Equal(t, int64(result.Chunks), result.Indexed)

	var stages []string
	for _, p := range events.ofType(pubsub.StageEvent) {
		stages = append(stages, p.Stage)
	}
	assert.Equal(t, []string{StageLoad, StageIndex, StageAnalyze, StageWrite}, stages)
}

type stubClassifier map[string]analysis.Classification

func (s stubClassifier) Classify(_ context.Context, text string) analysis.Classification {
	for marker, c := range s {
		if strings.Contains(text, marker) {
			return c
		}
	}
	return analysis.Classification{}
}

type stubSummarizer struct {
	categories []analysis.Category
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, category analysis.Category) string {
	s.categories = append(s.categories, category)
	return "summary of " + category.String()
}

func TestProcessRoutesByCategory(t *testing.T) {
	classifier := stubClassifier{
		"TASK":  {ContentType: "Todo", ActionItems: []string{"ship it"}},
		"STORY": {ContentType: "story", MainTopics: []string{"courage"}, KeyEntities: []string{"Ann"}},
		"RAW":   {RawAnalysis: "not json"},
		"ERR":   {Error: "boom"},
	}
	summarizer := &stubSummarizer{}
	events := &recorder{}
	o := NewOrchestrator(classifier, summarizer, events, logging.Discard())

	pages := []llm.Page{
		{Text: "TASK list", SourceFile: "a.txt"},
		{Text: "STORY time", SourceFile: "b.txt"},
		{Text: "RAW reply", SourceFile: "c.txt"},
		{Text: "ERR", SourceFile: "d.txt"},
	}
	r := o.Process(context.Background(), pages)

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "d.txt"}, r.FilesProcessed)
	assert.Equal(t, []analysis.Category{analysis.TaskLike, analysis.StoryLike, analysis.General, analysis.General}, summarizer.categories)

	require.Len(t, r.TaskLists, 1)
	assert.Equal(t, "a.txt", r.TaskLists[0].File)
	assert.Equal(t, analysis.UrgencyNone, r.TaskLists[0].Urgency)

	require.Len(t, r.Stories, 1)
	assert.Equal(t, report.StoryEntry{
		File:       "b.txt",
		Summary:    "summary of story",
		Characters: []string{"Ann"},
		Themes:     []string{"courage"},
	}, r.Stories[0])

	assert.Equal(t, analysis.DefaultContentType, r.Summaries["c.txt"].ContentType)
	assert.Equal(t, "not json", r.CategorizedContent["c.txt"].RawAnalysis)
	assert.Equal(t, "boom", r.CategorizedContent["d.txt"].Error)

	finished := events.ofType(pubsub.FileFinishedEvent)
	require.Len(t, finished, 4)
	assert.False(t, finished[0].Degraded)
	assert.True(t, finished[2].Degraded)
	assert.True(t, finished[3].Degraded)
	assert.Equal(t, 4, finished[3].Total)
}

func TestProcessJoinsPagesPerFile(t *testing.T) {
	var seen []string
	classifier := classifierFunc(func(text string) analysis.Classification {
		seen = append(seen, text)
		return analysis.Classification{ContentType: "report"}
	})
	o := NewOrchestrator(classifier, &stubSummarizer{}, nil, nil)

	r := o.Process(context.Background(), []llm.Page{
		{Text: "one", SourceFile: "x.pdf"},
		{Text: "alpha", SourceFile: "y.pdf"},
		{Text: "two", SourceFile: "x.pdf"},
	})

	assert.Equal(t, []string{"one\n\ntwo", "alpha"}, seen)
	assert.Equal(t, []string{"x.pdf", "y.pdf"}, r.FilesProcessed)
	assert.Equal(t, 3, r.TotalDocuments)
}

type classifierFunc func(text string) analysis.Classification

func (f classifierFunc) Classify(_ context.Context, text string) analysis.Classification {
	return f(text)
}

func TestProcessFlagsFailedSummary(t *testing.T) {
	classifier := classifierFunc(func(string) analysis.Classification {
		return analysis.Classification{ContentType: "report"}
	})
	summarizer := analysis.NewSummarizer(&routedCompleter{err: errors.New("rate limited")}, analysis.DefaultConfig(), logging.Discard())
	events := &recorder{}
	o := NewOrchestrator(classifier, summarizer, events, logging.Discard())

	r := o.Process(context.Background(), []llm.Page{{Text: "memo", SourceFile: "m.pdf"}})

	assert.Equal(t, "Error generating summary: rate limited", r.Summaries["m.pdf"].Summary)
	finished := events.ofType(pubsub.FileFinishedEvent)
	require.Len(t, finished, 1)
	assert.True(t, finished[0].Degraded)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{InputDir: t.TempDir(), OutputDir: t.TempDir()}, Deps{})
	assert.Error(t, err)
}
