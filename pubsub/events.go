package pubsub

import "context"

const (
	// StageEvent 流水线进入新阶段（加载、建索引、分析、写报告）
	StageEvent EventType = "stage"
	// FileStartedEvent 开始处理单个文件
	FileStartedEvent EventType = "file_started"
	// FileFinishedEvent 单个文件处理结束（可能是降级结果）
	FileFinishedEvent EventType = "file_finished"
	// FinishedEvent 整次运行结束
	FinishedEvent EventType = "finished"
)

// Subscriber 订阅者接口，定义了获取事件通道的方法
type Subscriber[T any] interface {
	// Subscribe 返回一个只读的事件通道，并在 context 结束时自动关闭
	Subscribe(context.Context) <-chan Event[T]
}

type (
	// EventType 标识事件的类型
	EventType string

	// Event 代表一次运行中的一个进度事件
	Event[T any] struct {
		Type    EventType // 事件类型
		Payload T         // 事件携带的具体数据载荷
	}

	// Publisher 发布者接口，定义了发布事件的方法
	Publisher[T any] interface {
		// Publish 将指定类型和载荷的事件发布给所有订阅者
		Publish(EventType, T)
	}
)
