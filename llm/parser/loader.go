package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"pdf-analyzer/llm"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern selects the files a Loader reads when no pattern is given
const DefaultPattern = "*.pdf"

// Loader reads every matching file of a folder into pages
type Loader struct {
	extractor Extractor
	pattern   string
	logger    *slog.Logger
}

// NewLoader creates a loader that extracts files matching pattern
func NewLoader(extractor Extractor, pattern string, logger *slog.Logger) *Loader {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		extractor: extractor,
		pattern:   pattern,
		logger:    logger.With("component", "loader"),
	}
}

// Load returns the pages of every readable file in dir, in file name order.
// A file that fails extraction is logged and skipped.
func (l *Loader) Load(ctx context.Context, dir string) ([]llm.Page, error) {
	root, files, err := l.match(dir)
	if err != nil {
		return nil, err
	}

	var pages []llm.Page
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, err := filepath.Rel(root, path)
		if err != nil {
			name = filepath.Base(path)
		}
		l.logger.Info("Loading file", "file", name)

		doc, err := l.extractor.Extract(ctx, path)
		if err != nil {
			l.logger.Error("Failed to load file", "file", name, "error", err)
			continue
		}
		if len(doc.Pages) == 0 {
			l.logger.Warn("No pages extracted", "file", name)
			continue
		}
		l.logger.Debug("Loaded file", "file", name, "title", doc.Title, "pages", len(doc.Pages), "metadata", doc.Metadata)

		for i, text := range doc.Pages {
			pages = append(pages, llm.Page{
				Text:       text,
				SourceFile: name,
				FilePath:   path,
				PageIndex:  i,
			})
		}
	}

	return pages, nil
}

// match lists regular files in dir that match the loader pattern
func (l *Loader) match(dir string) (string, []string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve input folder: %w", err)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(absPath, l.pattern))
	if err != nil {
		return "", nil, fmt.Errorf("invalid file pattern %q: %w", l.pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return absPath, files, nil
}
