// Package executor dispatches graph tasks to the component that implements their kind.
package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TaskExecutor = (*Executor)(nil)

// Transformer runs the pipeline of a transform task.
type Transformer interface {
	Run(ctx context.Context, task *domain.Task, diag io.Writer) error
}

// Services start the background loops behind the watch and serve tasks.
// A nil function makes its task a no-op.
type Services struct {
	Watch func(ctx context.Context) error
	Serve func(ctx context.Context) error
}

// Executor implements ports.TaskExecutor.
type Executor struct {
	cfg         *domain.BuildConfig
	transformer Transformer
	resolver    ports.InputResolver
	injector    ports.Injector
	store       ports.FingerprintStore
	reloader    ports.Reloader
	services    Services
}

// New creates an Executor for cfg.
func New(
	cfg *domain.BuildConfig,
	transformer Transformer,
	resolver ports.InputResolver,
	injector ports.Injector,
	store ports.FingerprintStore,
	reloader ports.Reloader,
	services Services,
) *Executor {
	return &Executor{
		cfg:         cfg,
		transformer: transformer,
		resolver:    resolver,
		injector:    injector,
		store:       store,
		reloader:    reloader,
		services:    services,
	}
}

// Execute runs task according to its kind.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, out io.Writer) error {
	switch task.Kind {
	case domain.KindTransform:
		return e.transformer.Run(ctx, task, out)
	case domain.KindClean:
		return e.clean()
	case domain.KindInject:
		return e.inject()
	case domain.KindReload:
		return e.reloader.Reload(ctx)
	case domain.KindWatch:
		return startService(ctx, e.services.Watch)
	case domain.KindServe:
		return startService(ctx, e.services.Serve)
	default:
		return zerr.With(zerr.With(domain.ErrUnknownTaskKind, "kind", task.Kind.String()), "task", task.Name.String())
	}
}

func startService(ctx context.Context, start func(context.Context) error) error {
	if start == nil {
		return nil
	}
	return start(ctx)
}

// clean removes the mode's output directory and resets the incremental cache.
func (e *Executor) clean() error {
	out, err := e.outputDir()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(out); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "path", out)
	}
	return e.store.Reset()
}

// inject writes the output index document with references to the built
// styles and scripts, in injection glob order.
func (e *Executor) inject() error {
	entry := e.cfg.Paths.Entry(domain.CategoryIndex)
	if len(entry.Inputs) == 0 {
		return nil
	}
	source := filepath.Join(e.cfg.Root, filepath.FromSlash(entry.Inputs[0]))
	index, err := os.ReadFile(source)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "file", source)
	}

	out, err := e.outputDir()
	if err != nil {
		return err
	}

	globs := e.cfg.Paths.Inject()
	styles, err := e.resolveOrdered(globs.Styles, out)
	if err != nil {
		return err
	}
	scripts, err := e.resolveOrdered(globs.Scripts, out)
	if err != nil {
		return err
	}

	document, err := e.injector.Inject(index, styles, scripts)
	if err != nil {
		return errors.Join(domain.ErrTransformFailed, zerr.With(err, "file", source))
	}

	target := filepath.Join(out, domain.IndexFileName)
	if err := os.MkdirAll(out, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "file", target)
	}
	if err := os.WriteFile(target, document, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "file", target)
	}
	return nil
}

// resolveOrdered expands each glob in turn so earlier globs come first.
// A file matched by several globs is listed once.
func (e *Executor) resolveOrdered(globs []string, dir string) ([]string, error) {
	var out []string
	for _, glob := range globs {
		files, err := e.resolver.ResolveInputs([]string{glob}, dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// outputDir returns the absolute output directory, refusing paths outside the root.
func (e *Executor) outputDir() (string, error) {
	out := filepath.Join(e.cfg.Root, filepath.FromSlash(e.cfg.Paths.Output()))
	rel, err := filepath.Rel(e.cfg.Root, out)
	if err != nil || !filepath.IsLocal(rel) {
		return "", zerr.With(domain.ErrPathOutsideRoot, "path", out)
	}
	return out, nil
}
