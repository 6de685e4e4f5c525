// Package pipeline runs the step list of a transform task over its input files.
package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Pipeline loads a task's inputs, applies its steps in order and writes the result.
// The changed and write steps are handled here because they touch the
// incremental cache; every other step is dispatched to a Transformer.
type Pipeline struct {
	root      string
	vendorDir string
	resolver  ports.InputResolver
	vendor    ports.VendorLocator
	hasher    ports.Hasher
	store     ports.FingerprintStore
	steps     map[domain.Step]ports.Transformer
}

// New creates a Pipeline for cfg.
func New(
	cfg *domain.BuildConfig,
	resolver ports.InputResolver,
	vendor ports.VendorLocator,
	hasher ports.Hasher,
	store ports.FingerprintStore,
	transformers []ports.Transformer,
) *Pipeline {
	steps := make(map[domain.Step]ports.Transformer, len(transformers))
	for _, t := range transformers {
		steps[t.Step()] = t
	}
	return &Pipeline{
		root:      cfg.Root,
		vendorDir: cfg.Layout.Vendor,
		resolver:  resolver,
		vendor:    vendor,
		hasher:    hasher,
		store:     store,
		steps:     steps,
	}
}

// Run executes the task's steps. Fingerprints of files that passed the
// changed step are committed only after they were written.
func (p *Pipeline) Run(ctx context.Context, task *domain.Task, diag io.Writer) error {
	artifacts, err := p.load(task)
	if err != nil {
		return err
	}

	pending := make(map[string]string)
	for _, step := range task.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch step {
		case domain.StepChanged:
			artifacts = p.changed(task, artifacts, pending)
		case domain.StepWrite:
			if err := p.write(task, artifacts); err != nil {
				return err
			}
			if err := p.commit(task.Category, pending); err != nil {
				return err
			}
		default:
			transformer, ok := p.steps[step]
			if !ok {
				return zerr.With(zerr.With(domain.ErrUnknownStep, "step", string(step)), "task", task.Name.String())
			}
			if artifacts, err = transformer.Apply(ctx, task, artifacts, diag); err != nil {
				return err
			}
		}
	}
	return nil
}

// load resolves the task's globs and reads every matching file. Artifact
// paths are relative to the static prefix of the glob that matched.
func (p *Pipeline) load(task *domain.Task) ([]domain.Artifact, error) {
	patterns := domain.Strings(task.Inputs)
	if len(patterns) == 0 {
		return nil, nil
	}

	var files []string
	var err error
	if isVendor(task.Category) {
		files, err = p.vendor.Locate(p.root, p.vendorDir, patterns)
	} else {
		files, err = p.resolver.ResolveInputs(patterns, p.root)
	}
	if err != nil {
		return nil, err
	}

	artifacts := make([]domain.Artifact, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(file)))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "file", file)
		}
		artifacts = append(artifacts, domain.Artifact{
			Path:    relativeToBase(patterns, file),
			Source:  file,
			Content: content,
		})
	}
	return artifacts, nil
}

func isVendor(c domain.Category) bool {
	return c == domain.CategoryVendorScripts || c == domain.CategoryVendorStyles
}

// relativeToBase strips the static directory prefix of the first pattern matching file.
func relativeToBase(patterns []string, file string) string {
	for _, pattern := range patterns {
		if !doublestar.MatchUnvalidated(pattern, file) {
			continue
		}
		base, _ := doublestar.SplitPattern(pattern)
		if base == "." {
			return file
		}
		if rel, ok := strings.CutPrefix(file, base+"/"); ok {
			return rel
		}
	}
	return file
}

// changed drops artifacts whose fingerprint matches the cache and whose output
// file still exists. The fingerprints of the rest are recorded in pending.
func (p *Pipeline) changed(task *domain.Task, in []domain.Artifact, pending map[string]string) []domain.Artifact {
	dest := p.dest(task)
	out := in[:0:0]
	for _, a := range in {
		fingerprint := p.hasher.Sum(a.Content)
		if !p.store.Changed(task.Category, a.Source, fingerprint) && exists(filepath.Join(dest, filepath.FromSlash(a.Path))) {
			continue
		}
		pending[a.Source] = fingerprint
		out = append(out, a)
	}
	return out
}

func (p *Pipeline) dest(task *domain.Task) string {
	return filepath.Join(p.root, filepath.FromSlash(task.Output.String()))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (p *Pipeline) write(task *domain.Task, artifacts []domain.Artifact) error {
	dest := p.dest(task)
	for _, a := range artifacts {
		target := filepath.Join(dest, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "file", target)
		}
		if err := os.WriteFile(target, a.Content, domain.FilePerm); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "file", target)
		}
	}
	return nil
}

func (p *Pipeline) commit(category domain.Category, pending map[string]string) error {
	if len(pending) == 0 {
		return nil
	}
	for source, fingerprint := range pending {
		p.store.Commit(category, source, fingerprint)
	}
	clear(pending)
	return p.store.Flush()
}
