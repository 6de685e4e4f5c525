// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// TaskExecutor defines the interface for executing a single task of a graph.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type TaskExecutor interface {
	// Execute runs the given task. Diagnostics are written to out.
	//
	// It returns an error if the task fails. Transform failures are
	// reported as errors wrapping domain.ErrTransformFailed.
	Execute(ctx context.Context, task *domain.Task, out io.Writer) error
}

// CommandRunner runs external tools.
type CommandRunner interface {
	// Run executes argv in dir, feeding stdin to the process and streaming
	// its stderr to diag. It returns the captured stdout.
	Run(ctx context.Context, dir string, argv []string, stdin []byte, diag io.Writer) ([]byte, error)
}
