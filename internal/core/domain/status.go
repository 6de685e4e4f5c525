package domain

// TaskStatus is the outcome of one task in a graph run.
type TaskStatus string

const (
	// StatusPending indicates the task has not started.
	StatusPending TaskStatus = "pending"
	// StatusRunning indicates the task is executing.
	StatusRunning TaskStatus = "running"
	// StatusCompleted indicates the task succeeded.
	StatusCompleted TaskStatus = "completed"
	// StatusRecovered indicates the task failed in development mode and the build went on.
	StatusRecovered TaskStatus = "recovered"
	// StatusFailed indicates the task failed and aborted the graph.
	StatusFailed TaskStatus = "failed"
	// StatusSkipped indicates the task never ran because an earlier group failed.
	StatusSkipped TaskStatus = "skipped"
)

// IsTerminal reports whether the status is final.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRecovered, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}
