package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Linter validates script syntax and runs the optional external linter.
// Problems are written to the diagnostics writer; they fail the step only when strict.
type Linter struct {
	runner  ports.CommandRunner
	root    string
	command []string
	strict  bool
}

// NewLinter creates a Linter. An empty command disables the external linter.
func NewLinter(runner ports.CommandRunner, root string, command []string, strict bool) *Linter {
	return &Linter{runner: runner, root: root, command: command, strict: strict}
}

// Step implements ports.Transformer.
func (l *Linter) Step() domain.Step {
	return domain.StepLint
}

// Apply implements ports.Transformer.
func (l *Linter) Apply(ctx context.Context, _ *domain.Task, in []domain.Artifact, diag io.Writer) ([]domain.Artifact, error) {
	var problems []error

	for _, a := range in {
		if path.Ext(a.Path) != ".js" {
			continue
		}

		if err := checkSyntax(a); err != nil {
			_, _ = fmt.Fprintln(diag, err.Error())
			problems = append(problems, err)
		}

		if len(l.command) == 0 {
			continue
		}
		argv, usesInput := expandCommand(l.command, sourcePath(l.root, a.Source))
		var stdin []byte
		if !usesInput {
			stdin = a.Content
		}
		out, err := l.runner.Run(ctx, l.root, argv, stdin, diag)
		_, _ = diag.Write(out)
		if err != nil {
			problems = append(problems, zerr.With(zerr.Wrap(err, "linter reported problems"), "file", a.Source))
		}
	}

	if len(problems) == 0 || !l.strict {
		return in, nil
	}

	return nil, errors.Join(
		domain.ErrTransformFailed,
		zerr.With(zerr.Wrap(errors.Join(problems...), domain.ErrLintFailed.Error()), "problems", len(problems)),
	)
}

func checkSyntax(a domain.Artifact) error {
	_, err := js.Parse(parse.NewInputBytes(a.Content), js.Options{})
	if err == nil {
		return nil
	}

	var perr *parse.Error
	if !errors.As(err, &perr) {
		return zerr.With(zerr.Wrap(err, "invalid script"), "file", a.Source)
	}
	return zerr.New(fmt.Sprintf("%s:%d:%d: %s", a.Source, perr.Line, perr.Column, perr.Message))
}
