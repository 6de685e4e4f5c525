package fs

import (
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar globs.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveInputs expands patterns below root into a sorted, deduplicated list of
// slash-separated file paths relative to root. Patterns without matches are skipped.
func (r *Resolver) ResolveInputs(patterns []string, root string) ([]string, error) {
	fsys := os.DirFS(root)
	var result []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(domain.ErrGlobFailed, "pattern", pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrGlobFailed.Error()), "pattern", pattern)
		}
		result = append(result, matches...)
	}

	slices.Sort(result)
	return slices.Compact(result), nil
}
