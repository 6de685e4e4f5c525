// Package assets implements the transform steps of the asset pipelines.
package assets

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Toolkit builds the step transformers for a configuration.
type Toolkit struct {
	runner ports.CommandRunner
	hasher ports.Hasher
}

// NewToolkit creates a Toolkit running external tools through runner.
func NewToolkit(runner ports.CommandRunner, hasher ports.Hasher) *Toolkit {
	return &Toolkit{runner: runner, hasher: hasher}
}

// Transformers returns the transformers of every step except changed and write,
// which the pipeline handles itself.
func (k *Toolkit) Transformers(cfg *domain.BuildConfig) []ports.Transformer {
	return []ports.Transformer{
		NewPreprocessor(cfg.Mode),
		NewLinter(k.runner, cfg.Root, cfg.Tools.Lint, cfg.Mode.Strict()),
		NewStyleCompiler(k.runner, cfg.Root, cfg.Tools.Styles),
		NewImageOptimizer(k.runner, cfg.Root, cfg.Tools.Images),
		NewTemplateCache(cfg.Paths.Output()),
		NewConcatenator(),
		NewMinifier(),
		NewFingerprinter(k.hasher),
	}
}

// transformFailure reports input rejected by a step.
func transformFailure(err error, msg, file string) error {
	return errors.Join(domain.ErrTransformFailed, zerr.With(zerr.Wrap(err, msg), "file", file))
}

// expandCommand substitutes the input placeholder in argv. It reports whether
// the placeholder was present; when it is not, callers feed the content on stdin.
func expandCommand(argv []string, input string) ([]string, bool) {
	out := make([]string, len(argv))
	used := false
	for i, arg := range argv {
		if strings.Contains(arg, domain.InputPlaceholder) {
			arg = strings.ReplaceAll(arg, domain.InputPlaceholder, input)
			used = true
		}
		out[i] = arg
	}
	return out, used
}

// sourcePath returns the absolute path of a root-relative source.
func sourcePath(root, source string) string {
	return filepath.Join(root, filepath.FromSlash(source))
}

func replaceExt(p, ext string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}
