package component

import (
	"fmt"
	"strings"

	"pdf-analyzer/pipeline"

	"github.com/charmbracelet/lipgloss"
)

// RenderSummary 渲染一次运行的统计信息框
func RenderSummary(result *pipeline.RunResult) string {
	theme := DefaultTheme()

	if result == nil || result.Report == nil {
		return theme.Dim.Render("No documents processed.")
	}

	r := result.Report
	rows := [][2]string{
		{"Files", fmt.Sprint(len(r.FilesProcessed))},
		{"Pages", fmt.Sprint(result.Pages)},
		{"Chunks", fmt.Sprint(result.Chunks)},
		{"Indexed", fmt.Sprint(result.Indexed)},
		{"Tasks", fmt.Sprint(len(r.TaskLists))},
		{"Stories", fmt.Sprint(len(r.Stories))},
	}

	cells := make([]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, theme.Label.Render(row[0]+":")+" "+theme.Value.Render(row[1]))
	}

	lines := []string{
		theme.Title.Render("Analysis complete"),
		strings.Join(cells, "  "),
	}
	if result.Paths.JSON != "" {
		lines = append(lines, theme.Label.Render("JSON:")+"     "+result.Paths.JSON)
	}
	if result.Paths.Markdown != "" {
		lines = append(lines, theme.Label.Render("Markdown:")+" "+result.Paths.Markdown)
	}

	return theme.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
