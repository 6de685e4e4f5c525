// Package scheduler runs a task graph group by group.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Scheduler runs the layered groups of a graph in order. Tasks of a group run
// concurrently and the next group starts only when all of them finished.
type Scheduler struct {
	executor ports.TaskExecutor
	tracer   ports.Tracer
	logger   ports.Logger
	strict   bool

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]domain.TaskStatus
}

// NewScheduler creates a Scheduler. In strict mode every task failure aborts
// the graph; otherwise transform failures are recovered and the graph goes on.
func NewScheduler(executor ports.TaskExecutor, tracer ports.Tracer, logger ports.Logger, strict bool) *Scheduler {
	return &Scheduler{
		executor:   executor,
		tracer:     tracer,
		logger:     logger,
		strict:     strict,
		taskStatus: make(map[domain.InternedString]domain.TaskStatus),
	}
}

// Run validates graph and executes it. The first failing group aborts the
// run: later groups are skipped and the failure is returned wrapped in
// domain.ErrGraphAborted. Outputs already written are kept.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph) error {
	if err := graph.Validate(); err != nil {
		return err
	}
	groups, err := graph.Groups()
	if err != nil {
		return err
	}

	plan := make([][]string, len(groups))
	for i, group := range groups {
		for _, task := range group {
			plan[i] = append(plan[i], task.Name.String())
			s.updateStatus(task.Name, domain.StatusPending)
		}
	}
	s.tracer.EmitPlan(ctx, graph.Name(), plan)

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			s.skip(groups[i:])
			return err
		}

		var g errgroup.Group
		for _, task := range group {
			g.Go(func() error {
				return s.execute(ctx, graph.Name(), &task)
			})
		}
		if err := g.Wait(); err != nil {
			s.skip(groups[i+1:])
			return errors.Join(domain.ErrGraphAborted, err)
		}
	}
	return nil
}

// Status returns the status of the named task in the last run.
func (s *Scheduler) Status(name string) domain.TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStatus[domain.NewInternedString(name)]
}

func (s *Scheduler) execute(ctx context.Context, graph string, task *domain.Task) error {
	s.updateStatus(task.Name, domain.StatusRunning)

	ctx, span := s.tracer.Start(ctx, task.Name.String(), ports.WithGraph(graph))
	defer span.End()

	err := s.executor.Execute(ctx, task, span)
	if err == nil {
		s.updateStatus(task.Name, domain.StatusCompleted)
		return nil
	}

	span.RecordError(err)
	if !s.strict && errors.Is(err, domain.ErrTransformFailed) {
		span.SetAttribute(ports.AttrRecovered, true)
		s.logger.Warn(task.Name.String() + " failed, previous output kept: " + err.Error())
		s.updateStatus(task.Name, domain.StatusRecovered)
		return nil
	}

	s.updateStatus(task.Name, domain.StatusFailed)
	return zerr.With(zerr.Wrap(err, domain.ErrTaskExecutionFailed.Error()), "task", task.Name.String())
}

func (s *Scheduler) skip(groups [][]domain.Task) {
	for _, group := range groups {
		for _, task := range group {
			s.updateStatus(task.Name, domain.StatusSkipped)
		}
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status domain.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}
