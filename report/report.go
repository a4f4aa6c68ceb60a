package report

import (
	"time"

	"pdf-analyzer/llm/analysis"
)

// AnalysisReport is the aggregate result of one run. Field order is the
// JSON key order.
type AnalysisReport struct {
	ProcessingDate     string                             `json:"processing_date"`
	TotalDocuments     int                                `json:"total_documents"`
	FilesProcessed     []string                           `json:"files_processed"`
	CategorizedContent map[string]analysis.Classification `json:"categorized_content"`
	Summaries          map[string]FileSummary             `json:"summaries"`
	TaskLists          []TaskEntry                        `json:"task_lists"`
	Stories            []StoryEntry                       `json:"stories"`
}

// FileSummary is the per-file summary entry
type FileSummary struct {
	ContentType string `json:"content_type"`
	Summary     string `json:"summary"`
}

// TaskEntry is the report view of a task-like document
type TaskEntry struct {
	File    string   `json:"file"`
	Tasks   []string `json:"tasks"`
	Urgency string   `json:"urgency"`
	Summary string   `json:"summary"`
}

// StoryEntry is the report view of a narrative document
type StoryEntry struct {
	File       string   `json:"file"`
	Summary    string   `json:"summary"`
	Characters []string `json:"characters"`
	Themes     []string `json:"themes"`
}

// New returns an empty report stamped with now
func New(now time.Time, totalDocuments int) *AnalysisReport {
	return &AnalysisReport{
		ProcessingDate:     now.Format(time.RFC3339),
		TotalDocuments:     totalDocuments,
		FilesProcessed:     []string{},
		CategorizedContent: map[string]analysis.Classification{},
		Summaries:          map[string]FileSummary{},
		TaskLists:          []TaskEntry{},
		Stories:            []StoryEntry{},
	}
}
