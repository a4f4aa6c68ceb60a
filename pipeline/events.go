package pipeline

import "pdf-analyzer/pubsub"

// Stages of a run, in order
const (
	StageLoad    = "load"
	StageIndex   = "index"
	StageAnalyze = "analyze"
	StageWrite   = "write"
)

// Progress is the payload of every run event
type Progress struct {
	Stage    string
	File     string
	Index    int // 1-based position of File
	Total    int
	Category string
	Degraded bool
	Message  string
}

type nopPublisher struct{}

func (nopPublisher) Publish(pubsub.EventType, Progress) {}
