package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pdf-analyzer/llm"
	"pdf-analyzer/llm/parser"
	"pdf-analyzer/llm/vector"
	"pdf-analyzer/pubsub"
	"pdf-analyzer/report"
)

// PageLoader reads the pages of every input file in a folder
type PageLoader interface {
	Load(ctx context.Context, dir string) ([]llm.Page, error)
}

// IndexBuilder embeds chunks into a similarity index
type IndexBuilder interface {
	Build(ctx context.Context, chunks []llm.Chunk) (vector.Index, error)
}

// ReportWriter persists a finished report
type ReportWriter interface {
	Write(r *report.AnalysisReport) (report.Paths, error)
}

var (
	_ PageLoader   = (*parser.Loader)(nil)
	_ IndexBuilder = (*vector.Builder)(nil)
	_ ReportWriter = (*report.Writer)(nil)
)

// Options are the fixed paths and chunking settings of an Analyzer
type Options struct {
	InputDir  string
	OutputDir string
	Chunk     vector.ChunkConfig
}

// Deps are the collaborators of an Analyzer. IndexBuilder, Events and
// Logger are optional.
type Deps struct {
	Loader       PageLoader
	IndexBuilder IndexBuilder
	Orchestrator *Orchestrator
	Writer       ReportWriter
	Events       pubsub.Publisher[Progress]
	Logger       *slog.Logger
}

// RunResult describes what a run produced. Report is nil for a no-op run.
type RunResult struct {
	Report  *report.AnalysisReport
	Paths   report.Paths
	Pages   int
	Chunks  int
	Indexed int64
}

// Analyzer runs load, index, analyze and write, strictly in sequence
type Analyzer struct {
	opts   Options
	deps   Deps
	logger *slog.Logger
}

// New checks deps and creates the input and output folders
func New(opts Options, deps Deps) (*Analyzer, error) {
	if deps.Loader == nil || deps.Orchestrator == nil || deps.Writer == nil {
		return nil, fmt.Errorf("loader, orchestrator and writer are required")
	}
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	for _, dir := range []string{opts.InputDir, opts.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create folder %s: %w", dir, err)
		}
	}

	return &Analyzer{
		opts:   opts,
		deps:   deps,
		logger: deps.Logger.With("component", "analyzer"),
	}, nil
}

// Run processes the input folder once. An empty folder is a no-op run
// that writes nothing and returns a result with a nil Report.
func (a *Analyzer) Run(ctx context.Context) (*RunResult, error) {
	a.stage(StageLoad, "Loading documents")
	pages, err := a.deps.Loader.Load(ctx, a.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	result := &RunResult{Pages: len(pages)}
	if len(pages) == 0 {
		a.logger.Info("No docs to process. Please add files to the input folder.", "input_dir", a.opts.InputDir)
		a.deps.Events.Publish(pubsub.FinishedEvent, Progress{Message: "nothing to process"})
		return result, nil
	}

	if a.deps.IndexBuilder != nil {
		index := a.buildIndex(ctx, pages, result)
		if index != nil {
			defer index.Close()
		}
	}

	a.stage(StageAnalyze, "Processing documents")
	result.Report = a.deps.Orchestrator.Process(ctx, pages)

	a.stage(StageWrite, "Writing reports")
	paths, err := a.deps.Writer.Write(result.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to write reports: %w", err)
	}
	result.Paths = paths

	a.logger.Info("Analysis complete!", "json", paths.JSON, "markdown", paths.Markdown)
	a.deps.Events.Publish(pubsub.FinishedEvent, Progress{Message: "analysis complete", Total: len(result.Report.FilesProcessed)})
	return result, nil
}

// buildIndex chunks the pages and builds the similarity index. Failures
// only disable the index.
func (a *Analyzer) buildIndex(ctx context.Context, pages []llm.Page, result *RunResult) vector.Index {
	a.stage(StageIndex, "Creating vector index")

	chunks := vector.ChunkPages(pages, a.opts.Chunk)
	result.Chunks = len(chunks)

	index, err := a.deps.IndexBuilder.Build(ctx, chunks)
	if err != nil {
		a.logger.Warn("Vector index unavailable", "error", err)
		return nil
	}

	if n, err := index.Count(ctx); err == nil {
		result.Indexed = n
	}
	a.logger.Debug("Vector index built", "chunks", len(chunks), "indexed", result.Indexed)
	return index
}

func (a *Analyzer) stage(stage, message string) {
	a.logger.Info(message)
	a.deps.Events.Publish(pubsub.StageEvent, Progress{Stage: stage, Message: message})
}
