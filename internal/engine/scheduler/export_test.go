package scheduler

import "go.trai.ch/kiln/internal/core/domain"

// TaskStatusMap returns a copy of the task status map keyed by task name.
func (s *Scheduler) TaskStatusMap() map[string]domain.TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.TaskStatus, len(s.taskStatus))
	for k, v := range s.taskStatus {
		out[k.String()] = v
	}
	return out
}
