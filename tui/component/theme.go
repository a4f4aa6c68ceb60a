package component

import "github.com/charmbracelet/lipgloss"

// Theme 终端输出的样式配置
type Theme struct {
	Stage    lipgloss.Style
	File     lipgloss.Style
	Counter  lipgloss.Style
	Task     lipgloss.Style
	Story    lipgloss.Style
	General  lipgloss.Style
	Degraded lipgloss.Style
	Dim      lipgloss.Style
	Title    lipgloss.Style
	Box      lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
}

// DefaultTheme 返回默认主题
func DefaultTheme() *Theme {
	return &Theme{
		Stage: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bb9af7")). // Purple
			Bold(true),

		File: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")), // Cyan

		Counter: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray

		Task: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")). // Orange
			Bold(true),

		Story: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")). // Green
			Bold(true),

		General: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),

		Degraded: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")). // Red
			Italic(true),

		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89")).
			Faint(true),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")). // Yellow
			Bold(true),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#565f89")).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),
	}
}

// Icons 图标配置
type Icons struct {
	Stage   string
	File    string
	Success string
	Warning string
}

// DefaultIcons 返回默认图标
func DefaultIcons() *Icons {
	return &Icons{
		Stage:   "==>",
		File:    "📄",
		Success: "✅",
		Warning: "⚠",
	}
}

// CategoryStyle 根据分类名选择样式
func (t *Theme) CategoryStyle(category string) lipgloss.Style {
	switch category {
	case "task":
		return t.Task
	case "story":
		return t.Story
	default:
		return t.General
	}
}
