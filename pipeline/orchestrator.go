package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pdf-analyzer/llm"
	"pdf-analyzer/llm/analysis"
	"pdf-analyzer/pubsub"
	"pdf-analyzer/report"
)

// Classifier classifies the full text of one file
type Classifier interface {
	Classify(ctx context.Context, text string) analysis.Classification
}

// Summarizer summarizes the full text of one file
type Summarizer interface {
	Summarize(ctx context.Context, text string, category analysis.Category) string
}

var (
	_ Classifier = (*analysis.Classifier)(nil)
	_ Summarizer = (*analysis.Summarizer)(nil)
)

// fileText is the joined text of one source file
type fileText struct {
	name string
	text string
}

// Orchestrator turns loaded pages into an AnalysisReport, one file at a time
type Orchestrator struct {
	classifier Classifier
	summarizer Summarizer
	events     pubsub.Publisher[Progress]
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrchestrator wires the classifier and summarizer. events and logger may be nil.
func NewOrchestrator(classifier Classifier, summarizer Summarizer, events pubsub.Publisher[Progress], logger *slog.Logger) *Orchestrator {
	if events == nil {
		events = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		classifier: classifier,
		summarizer: summarizer,
		events:     events,
		logger:     logger.With("component", "orchestrator"),
		now:        time.Now,
	}
}

// Process classifies and summarizes every file in first-seen order. A
// degraded classification or summary is recorded and the next file runs.
func (o *Orchestrator) Process(ctx context.Context, pages []llm.Page) *report.AnalysisReport {
	o.logger.Info("Processing documents", "pages", len(pages))

	files := groupByFile(pages)
	r := report.New(o.now(), len(pages))

	for i, file := range files {
		progress := Progress{Stage: StageAnalyze, File: file.name, Index: i + 1, Total: len(files)}
		o.events.Publish(pubsub.FileStartedEvent, progress)
		o.logger.Info("Processing file", "file", file.name)

		classification := o.classifier.Classify(ctx, file.text)
		contentType := classification.ResolvedContentType()
		category := analysis.CategoryOf(contentType)

		summary := o.summarizer.Summarize(ctx, file.text, category)

		r.FilesProcessed = append(r.FilesProcessed, file.name)
		r.CategorizedContent[file.name] = classification
		r.Summaries[file.name] = report.FileSummary{
			ContentType: contentType,
			Summary:     summary,
		}

		switch category {
		case analysis.TaskLike:
			r.TaskLists = append(r.TaskLists, report.TaskEntry{
				File:    file.name,
				Tasks:   orEmpty(classification.ActionItems),
				Urgency: orDefault(classification.UrgencyLevel, analysis.UrgencyNone),
				Summary: summary,
			})
		case analysis.StoryLike:
			r.Stories = append(r.Stories, report.StoryEntry{
				File:       file.name,
				Summary:    summary,
				Characters: orEmpty(classification.KeyEntities),
				Themes:     orEmpty(classification.MainTopics),
			})
		}

		progress.Category = category.String()
		progress.Degraded = classification.Degraded() || analysis.IsSummaryError(summary)
		o.events.Publish(pubsub.FileFinishedEvent, progress)
	}

	return r
}

// groupByFile joins page texts per source file, keeping first-seen file
// order and page order
func groupByFile(pages []llm.Page) []fileText {
	var order []string
	texts := make(map[string][]string)
	for _, p := range pages {
		if _, seen := texts[p.SourceFile]; !seen {
			order = append(order, p.SourceFile)
		}
		texts[p.SourceFile] = append(texts[p.SourceFile], p.Text)
	}

	files := make([]fileText, 0, len(order))
	for _, name := range order {
		files = append(files, fileText{name: name, text: strings.Join(texts[name], "\n\n")})
	}
	return files
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
