package assets

import (
	"bytes"
	"cmp"
	"context"
	"io"
	"path"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
)

// Concatenator joins all artifacts into the task's bundle in sorted source order.
type Concatenator struct{}

// NewConcatenator creates a Concatenator.
func NewConcatenator() *Concatenator {
	return &Concatenator{}
}

// Step implements ports.Transformer.
func (c *Concatenator) Step() domain.Step {
	return domain.StepConcat
}

// Apply implements ports.Transformer.
func (c *Concatenator) Apply(_ context.Context, task *domain.Task, in []domain.Artifact, _ io.Writer) ([]domain.Artifact, error) {
	if task.Bundle == "" {
		return nil, domain.ErrMissingBundleName
	}

	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b domain.Artifact) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Path, b.Path))
	})

	script := path.Ext(task.Bundle.String()) == ".js"

	var buf bytes.Buffer
	for _, a := range sorted {
		content := bytes.TrimRight(a.Content, " \t\r\n")
		buf.Write(content)
		// Scripts that omit their final semicolon must not merge with the next file.
		if script && len(content) > 0 && content[len(content)-1] != ';' {
			buf.WriteByte(';')
		}
		buf.WriteByte('\n')
	}

	return []domain.Artifact{{Path: task.Bundle.String(), Content: buf.Bytes()}}, nil
}
