package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func PlanMsg(graph string, groups [][]string) tea.Msg {
	return msgPlan{Graph: graph, Groups: groups}
}

func StartMsg(spanID, name string, at time.Time) tea.Msg {
	return msgTaskStart{SpanID: spanID, Name: name, StartTime: at}
}

func LogMsg(spanID, data string) tea.Msg {
	return msgTaskLog{SpanID: spanID, Data: []byte(data)}
}

func CompleteMsg(spanID string, at time.Time, err error) tea.Msg {
	return msgTaskComplete{SpanID: spanID, EndTime: at, Err: err}
}
