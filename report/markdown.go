package report

import (
	"fmt"
	"strings"
)

// Markdown renders the human-readable report
func Markdown(r *AnalysisReport) string {
	var b strings.Builder

	b.WriteString("# PDF Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", r.ProcessingDate)
	fmt.Fprintf(&b, "**Files Processed:** %d docs from %d files\n\n", r.TotalDocuments, len(r.FilesProcessed))

	if len(r.TaskLists) > 0 {
		b.WriteString("## Task Lists\n\n")
		for _, task := range r.TaskLists {
			fmt.Fprintf(&b, "### %s\n", task.File)
			fmt.Fprintf(&b, "**Urgency:** %s\n\n", task.Urgency)
			if len(task.Tasks) > 0 {
				b.WriteString("**Action Items:**\n")
				for _, item := range task.Tasks {
					fmt.Fprintf(&b, "- [ ] %s\n", item)
				}
			}
			fmt.Fprintf(&b, "\n**Summary:**\n%s\n\n", task.Summary)
		}
	}

	if len(r.Stories) > 0 {
		b.WriteString("## Stories\n\n")
		for _, story := range r.Stories {
			fmt.Fprintf(&b, "### %s\n", story.File)
			if len(story.Characters) > 0 {
				fmt.Fprintf(&b, "**Characters:** %s\n", strings.Join(story.Characters, ", "))
			}
			if len(story.Themes) > 0 {
				fmt.Fprintf(&b, "**Themes:** %s\n", strings.Join(story.Themes, ", "))
			}
			fmt.Fprintf(&b, "\n**Summary:**\n%s\n\n", story.Summary)
		}
	}

	b.WriteString("## Document Summaries\n\n")
	for _, file := range r.FilesProcessed {
		summary, ok := r.Summaries[file]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", file)
		fmt.Fprintf(&b, "**Type:** %s\n", summary.ContentType)
		fmt.Fprintf(&b, "**Summary:**\n%s\n\n", summary.Summary)
	}

	return b.String()
}
