package component

import (
	"fmt"
	"io"
	"os"

	"pdf-analyzer/pipeline"
	"pdf-analyzer/pubsub"

	"github.com/charmbracelet/bubbles/progress"
)

const defaultBarWidth = 24

// ProgressPrinter 订阅运行事件并逐行打印进度
type ProgressPrinter struct {
	out   io.Writer
	bar   progress.Model
	theme *Theme
	icons *Icons
}

// NewProgressPrinter 创建进度打印器，out 为 nil 时写到 stdout
func NewProgressPrinter(out io.Writer, barWidth int) *ProgressPrinter {
	if out == nil {
		out = os.Stdout
	}
	if barWidth <= 0 {
		barWidth = defaultBarWidth
	}
	return &ProgressPrinter{
		out:   out,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		theme: DefaultTheme(),
		icons: DefaultIcons(),
	}
}

// Run 持续读取事件直到通道关闭（Broker Shutdown 后缓冲事件仍会读完）
func (p *ProgressPrinter) Run(events <-chan pubsub.Event[pipeline.Progress]) {
	for event := range events {
		if line := p.Line(event); line != "" {
			fmt.Fprintln(p.out, line)
		}
	}
}

// Line 把单个事件格式化为一行输出，不关心的事件返回空串
func (p *ProgressPrinter) Line(event pubsub.Event[pipeline.Progress]) string {
	e := event.Payload
	switch event.Type {
	case pubsub.StageEvent:
		return p.theme.Stage.Render(fmt.Sprintf("%s %s", p.icons.Stage, e.Message))

	case pubsub.FileStartedEvent:
		return fmt.Sprintf("%s %s %s %s",
			p.bar.ViewAs(fraction(e.Index-1, e.Total)),
			p.counter(e),
			p.icons.File,
			p.theme.File.Render(e.File),
		)

	case pubsub.FileFinishedEvent:
		status := p.theme.CategoryStyle(e.Category).Render(e.Category)
		if e.Degraded {
			status += " " + p.theme.Degraded.Render(p.icons.Warning+" degraded")
		}
		return fmt.Sprintf("%s %s %s -> %s",
			p.bar.ViewAs(fraction(e.Index, e.Total)),
			p.counter(e),
			p.theme.File.Render(e.File),
			status,
		)

	case pubsub.FinishedEvent:
		return p.theme.Dim.Render(e.Message)
	}
	return ""
}

func (p *ProgressPrinter) counter(e pipeline.Progress) string {
	return p.theme.Counter.Render(fmt.Sprintf("[%d/%d]", e.Index, e.Total))
}

func fraction(done, total int) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}
