package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout formats the run timestamp shared by both output files
const TimestampLayout = "20060102_150405"

// maxNameAttempts bounds the numbered names tried when a run in the same
// second already took the plain timestamp
const maxNameAttempts = 10

// Paths are the two files written for a run
type Paths struct {
	JSON     string
	Markdown string
}

// Writer writes reports into an output folder
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a writer for dir. A nil clock uses time.Now.
func NewWriter(dir string, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{dir: dir, now: now}
}

// Write stores the report as analysis_results_<ts>.json and
// summary_report_<ts>.md. Existing files are never overwritten: when either
// name is taken the pair moves to <ts>_2, <ts>_3 and so on. A failure leaves
// neither file behind.
func (w *Writer) Write(r *AnalysisReport) (Paths, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output folder: %w", err)
	}

	data, err := EncodeJSON(r)
	if err != nil {
		return Paths{}, err
	}

	paths, jsonFile, mdFile, err := w.reserve(w.now().Format(TimestampLayout))
	if err != nil {
		return Paths{}, err
	}

	if err := writeAll(jsonFile, data); err != nil {
		discard(jsonFile, mdFile)
		return Paths{}, err
	}
	if err := writeAll(mdFile, []byte(Markdown(r))); err != nil {
		os.Remove(paths.JSON)
		discard(mdFile)
		return Paths{}, err
	}
	return paths, nil
}

// reserve creates both output files empty under the first free name
func (w *Writer) reserve(ts string) (Paths, *os.File, *os.File, error) {
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		tag := ts
		if attempt > 1 {
			tag = fmt.Sprintf("%s_%d", ts, attempt)
		}
		paths := Paths{
			JSON:     filepath.Join(w.dir, fmt.Sprintf("analysis_results_%s.json", tag)),
			Markdown: filepath.Join(w.dir, fmt.Sprintf("summary_report_%s.md", tag)),
		}

		jsonFile, err := createNew(paths.JSON)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return Paths{}, nil, nil, err
		}

		mdFile, err := createNew(paths.Markdown)
		if err != nil {
			discard(jsonFile)
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return Paths{}, nil, nil, err
		}
		return paths, jsonFile, mdFile, nil
	}
	return Paths{}, nil, nil, fmt.Errorf("report names for %s are all taken", ts)
}

// EncodeJSON serializes the report with two-space indentation and without
// HTML escaping
func EncodeJSON(r *AnalysisReport) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadJSON loads a report previously written by Write
func ReadJSON(path string) (*AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// createNew opens a file that must not exist yet
func createNew(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// writeAll writes data and closes f
func writeAll(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(f.Name()), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(f.Name()), err)
	}
	return nil
}

// discard closes and removes files created by this run
func discard(files ...*os.File) {
	for _, f := range files {
		f.Close()
		os.Remove(f.Name())
	}
}
