package assets

import (
	"context"
	"errors"
	"io"
	"path"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// StyleCompiler turns style sources into CSS with an external compiler.
// Plain .css files pass through untouched.
type StyleCompiler struct {
	runner  ports.CommandRunner
	root    string
	command []string
}

// NewStyleCompiler creates a StyleCompiler.
func NewStyleCompiler(runner ports.CommandRunner, root string, command []string) *StyleCompiler {
	return &StyleCompiler{runner: runner, root: root, command: command}
}

// Step implements ports.Transformer.
func (c *StyleCompiler) Step() domain.Step {
	return domain.StepCompile
}

// Apply implements ports.Transformer.
func (c *StyleCompiler) Apply(ctx context.Context, _ *domain.Task, in []domain.Artifact, diag io.Writer) ([]domain.Artifact, error) {
	out := make([]domain.Artifact, 0, len(in))
	for _, a := range in {
		if path.Ext(a.Path) == ".css" {
			out = append(out, a)
			continue
		}
		if len(c.command) == 0 {
			return nil, transformFailure(errors.New("no style compiler configured"), "style compilation failed", a.Source)
		}

		css, err := runTool(ctx, c.runner, c.root, c.command, a, diag)
		if err != nil {
			return nil, transformFailure(err, "style compilation failed", a.Source)
		}
		out = append(out, domain.Artifact{Path: replaceExt(a.Path, ".css"), Source: a.Source, Content: css})
	}
	return out, nil
}

// ImageOptimizer compresses images with an optional external tool.
// Without a command it is the identity.
type ImageOptimizer struct {
	runner  ports.CommandRunner
	root    string
	command []string
}

// NewImageOptimizer creates an ImageOptimizer.
func NewImageOptimizer(runner ports.CommandRunner, root string, command []string) *ImageOptimizer {
	return &ImageOptimizer{runner: runner, root: root, command: command}
}

// Step implements ports.Transformer.
func (o *ImageOptimizer) Step() domain.Step {
	return domain.StepOptimize
}

// Apply implements ports.Transformer.
func (o *ImageOptimizer) Apply(ctx context.Context, _ *domain.Task, in []domain.Artifact, diag io.Writer) ([]domain.Artifact, error) {
	if len(o.command) == 0 {
		return in, nil
	}

	out := make([]domain.Artifact, 0, len(in))
	for _, a := range in {
		optimized, err := runTool(ctx, o.runner, o.root, o.command, a, diag)
		if err != nil {
			return nil, transformFailure(err, "image optimization failed", a.Source)
		}
		a.Content = optimized
		out = append(out, a)
	}
	return out, nil
}

func runTool(
	ctx context.Context, runner ports.CommandRunner, root string, command []string, a domain.Artifact, diag io.Writer,
) ([]byte, error) {
	argv, usesInput := expandCommand(command, sourcePath(root, a.Source))
	var stdin []byte
	if !usesInput {
		stdin = a.Content
	}
	return runner.Run(ctx, root, argv, stdin, diag)
}
