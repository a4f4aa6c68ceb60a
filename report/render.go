package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Render formats markdown for the terminal with the dracula style.
// A width of zero or less disables word wrapping.
func Render(markdown string, width int) (string, error) {
	if width < 0 {
		width = 0
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
