package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Transformer implements one pipeline step over a task's artifacts.
//
//go:generate mockgen -source=transform.go -destination=mocks/mock_transform.go -package=mocks
type Transformer interface {
	// Step returns the pipeline step this transformer implements.
	Step() domain.Step
	// Apply transforms the artifacts. Rejected input is reported as an
	// error wrapping domain.ErrTransformFailed.
	Apply(ctx context.Context, task *domain.Task, in []domain.Artifact, diag io.Writer) ([]domain.Artifact, error)
}

// Injector rewrites the index document with references to built assets.
type Injector interface {
	Inject(index []byte, styles, scripts []string) ([]byte, error)
}
