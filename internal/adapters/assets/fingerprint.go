package assets

import (
	"context"
	"io"
	"path"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

const fingerprintLen = 10

// Fingerprinter appends a content hash to every file name: main.js becomes main-<hash>.js.
type Fingerprinter struct {
	hasher ports.Hasher
}

// NewFingerprinter creates a Fingerprinter.
func NewFingerprinter(hasher ports.Hasher) *Fingerprinter {
	return &Fingerprinter{hasher: hasher}
}

// Step implements ports.Transformer.
func (f *Fingerprinter) Step() domain.Step {
	return domain.StepFingerprint
}

// Apply implements ports.Transformer.
func (f *Fingerprinter) Apply(_ context.Context, _ *domain.Task, in []domain.Artifact, _ io.Writer) ([]domain.Artifact, error) {
	out := make([]domain.Artifact, 0, len(in))
	for _, a := range in {
		sum := f.hasher.Sum(a.Content)
		if len(sum) > fingerprintLen {
			sum = sum[:fingerprintLen]
		}
		a.Path = fingerprinted(a.Path, sum)
		out = append(out, a)
	}
	return out, nil
}

func fingerprinted(p, sum string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + "-" + sum + ext
}
