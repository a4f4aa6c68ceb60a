package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pdf-analyzer/config"
	"pdf-analyzer/llm/analysis"
	"pdf-analyzer/llm/parser"
	"pdf-analyzer/llm/providers"
	"pdf-analyzer/llm/vector"
	"pdf-analyzer/logging"
	"pdf-analyzer/pipeline"
	"pdf-analyzer/preflight"
	"pdf-analyzer/pubsub"
	"pdf-analyzer/report"
	"pdf-analyzer/tui/component"
	"pdf-analyzer/tui/viewer"

	"github.com/spf13/cobra"
)

var errChecksFailed = errors.New("setup checks failed")

type options struct {
	configPath string
	input      string
	output     string
	pattern    string
	logLevel   string
	index      string
	progress   bool
	show       bool
	browse     bool
	check      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pdf-analyzer",
		Short: "Classify and summarize every document in a folder",
		Long: `pdf-analyzer reads every matching file in the input folder, asks a language
model to classify and summarize each one, and writes a timestamped JSON and
Markdown report to the output folder.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath+" when present)")
	flags.StringVarP(&opts.input, "input", "i", "", "input folder")
	flags.StringVarP(&opts.output, "output", "o", "", "output folder")
	flags.StringVarP(&opts.pattern, "pattern", "p", "", `glob of files to read, e.g. "*.{pdf,md,txt}"`)
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&opts.index, "index", "", "similarity index backend: memory or redis")
	flags.BoolVar(&opts.progress, "progress", false, "print a progress bar per file")
	flags.BoolVar(&opts.show, "show", false, "render the markdown report in the terminal")
	flags.BoolVar(&opts.browse, "browse", false, "open the markdown report in a scrollable viewer")
	flags.BoolVar(&opts.check, "check", false, "run the setup checks and exit")

	return cmd
}

func (o *options) apply(cfg *config.Config) error {
	if o.input != "" {
		cfg.InputDir = o.input
	}
	if o.output != "" {
		cfg.OutputDir = o.output
	}
	if o.pattern != "" {
		cfg.Pattern = o.pattern
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.index != "" {
		cfg.Index.Backend = o.index
	}
	return cfg.Validate()
}

func run(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	if opts.check {
		if !preflight.Run(ctx, cfg, os.Stdout) {
			return errChecksFailed
		}
		return nil
	}

	if err := cfg.RequireCredential(); err != nil {
		fmt.Printf("Warning: %s environment variable not set.\n", cfg.LLM.APIKeyEnv)
		return err
	}

	logger := logging.New(cfg.LogLevel, nil)

	if cfg.Tracing.CozeLoop {
		closeTracing, err := providers.SetupTracing(ctx, providers.TracingConfig{
			APIToken:    cfg.Tracing.APIToken,
			WorkspaceID: cfg.Tracing.WorkspaceID,
		})
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer closeTracing()
		}
	}

	broker := pubsub.NewBroker[pipeline.Progress]()
	printerDone := make(chan struct{})
	if opts.progress {
		events := broker.Subscribe(ctx)
		go func() {
			defer close(printerDone)
			component.NewProgressPrinter(os.Stdout, 0).Run(events)
		}()
	} else {
		close(printerDone)
	}

	analyzer, err := newAnalyzer(ctx, cfg, broker, logger)
	if err != nil {
		broker.Shutdown()
		return err
	}

	result, err := analyzer.Run(ctx)
	broker.Shutdown()
	<-printerDone
	if err != nil {
		return err
	}

	if result.Report == nil {
		return nil
	}
	fmt.Println(component.RenderSummary(result))

	return present(result, opts)
}

// newAnalyzer builds the chat model, the optional similarity index and the pipeline from cfg
func newAnalyzer(ctx context.Context, cfg *config.Config, events pubsub.Publisher[pipeline.Progress], logger *slog.Logger) (*pipeline.Analyzer, error) {
	chatModel, err := providers.NewChatModel(ctx, &providers.ChatModelConfig{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	completer, err := providers.NewChatCompleter(ctx, chatModel)
	if err != nil {
		return nil, err
	}

	analysisCfg := analysis.Config{
		ClassifyMaxChars: cfg.Analysis.ClassifyMaxChars,
		SummaryMaxChars:  cfg.Analysis.SummaryMaxChars,
	}
	orchestrator := pipeline.NewOrchestrator(
		analysis.NewClassifier(completer, analysisCfg, logger),
		analysis.NewSummarizer(completer, analysisCfg, logger),
		events,
		logger,
	)

	return pipeline.New(pipeline.Options{
		InputDir:  cfg.InputDir,
		OutputDir: cfg.OutputDir,
		Chunk: vector.ChunkConfig{
			ChunkSize:        cfg.Chunk.Size,
			ChunkOverlap:     cfg.Chunk.Overlap,
			SplitByParagraph: cfg.Chunk.SplitByParagraph,
		},
	}, pipeline.Deps{
		Loader:       parser.NewLoader(parser.DefaultRegistry(), cfg.Pattern, logger),
		IndexBuilder: newIndexBuilder(ctx, cfg, logger),
		Orchestrator: orchestrator,
		Writer:       report.NewWriter(cfg.OutputDir, time.Now),
		Events:       events,
		Logger:       logger,
	})
}

// newIndexBuilder returns nil when embeddings are disabled or unavailable,
// which leaves the run without a similarity index
func newIndexBuilder(ctx context.Context, cfg *config.Config, logger *slog.Logger) pipeline.IndexBuilder {
	if !cfg.Embedding.Enabled {
		return nil
	}

	embedder, err := providers.NewEmbeddingModel(ctx, &providers.EmbeddingConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
	if err != nil {
		logger.Warn("Embeddings disabled", "error", err)
		return nil
	}

	factory := vector.MemoryIndexFactory
	if cfg.Index.Backend == config.BackendRedis {
		redisCfg := vector.DefaultRedisConfig()
		redisCfg.Addr = cfg.Index.Redis.Addr
		redisCfg.Password = cfg.Index.Redis.Password
		redisCfg.DB = cfg.Index.Redis.DB
		redisCfg.PoolSize = cfg.Index.Redis.PoolSize
		redisCfg.IndexPrefix = cfg.Index.Redis.IndexPrefix
		factory = vector.RedisIndexFactory(redisCfg)
	}

	return vector.NewBuilder(vector.NewEmbeddingService(embedder, cfg.Embedding.BatchSize), factory)
}

// present renders the written markdown report when --show or --browse is set
func present(result *pipeline.RunResult, opts *options) error {
	if !opts.show && !opts.browse {
		return nil
	}

	raw, err := os.ReadFile(result.Paths.Markdown)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	if opts.browse {
		return viewer.Run(filepath.Base(result.Paths.Markdown), string(raw))
	}

	out, err := report.Render(string(raw), 100)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
