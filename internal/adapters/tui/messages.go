package tui

import "time"

// msgPlan resets the model to the tasks of a newly planned graph.
type msgPlan struct {
	Graph  string
	Groups [][]string
}

type msgTaskStart struct {
	SpanID    string
	Name      string
	StartTime time.Time
}

type msgTaskLog struct {
	SpanID string
	Data   []byte
}

type msgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
