package viewer

import (
	"fmt"

	"pdf-analyzer/report"
	"pdf-analyzer/tui/component"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model 报告浏览界面：标题 + 可滚动的 markdown 视口 + 底部状态栏
type Model struct {
	viewport viewport.Model
	title    string
	markdown string
	theme    *component.Theme

	width  int
	height int
	ready  bool
	err    error
}

// NewModel 创建报告浏览模型，尺寸在收到 WindowSizeMsg 后确定
func NewModel(title, markdown string) Model {
	return Model{
		viewport: viewport.New(80, 20),
		title:    title,
		markdown: markdown,
		theme:    component.DefaultTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// 计算视口高度
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		height := m.height - headerHeight - footerHeight
		// 确保高度至少为 1
		if height < 1 {
			height = 1
		}

		m.viewport.Width = m.width
		m.viewport.Height = height
		m.updateContent()
		m.ready = true
		return m, nil

	case tea.MouseMsg:
		// 处理鼠标滚轮事件
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.viewport.ScrollUp(3)
		case tea.MouseButtonWheelDown:
			m.viewport.ScrollDown(3)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

// updateContent 按当前宽度重新渲染 markdown，渲染失败时显示原文
func (m *Model) updateContent() {
	content, err := report.Render(m.markdown, m.width)
	if err != nil {
		m.err = err
		content = m.markdown
	}
	m.viewport.SetContent(content)
}

func (m Model) headerView() string {
	return m.theme.Title.Render(m.title)
}

func (m Model) footerView() string {
	status := fmt.Sprintf("%3.f%%  q to quit", m.viewport.ScrollPercent()*100)
	if m.err != nil {
		status += "  " + m.err.Error()
	}
	return m.theme.Dim.Render(status)
}

// Run 在全屏模式下浏览 markdown 报告，直到用户退出
func Run(title, markdown string) error {
	program := tea.NewProgram(
		NewModel(title, markdown),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report viewer: %w", err)
	}
	return nil
}
