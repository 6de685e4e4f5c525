package assets

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

var (
	echoDirective  = regexp.MustCompile(`/\*\s*@echo\s+(\w+)\s*\*/`)
	ifDirective    = regexp.MustCompile(`^\s*//\s*@if\s+(\w+)\s*(==|!=|=)\s*'([^']*)'\s*$`)
	endifDirective = regexp.MustCompile(`^\s*//\s*@endif\s*$`)
)

// Preprocessor substitutes build-time directives in scripts:
// "/* @echo NAME */" is replaced by the variable's value and lines between
// "// @if NAME='value'" and "// @endif" are kept only when the condition holds.
type Preprocessor struct {
	vars map[string]string
}

// NewPreprocessor creates a Preprocessor whose NODE_ENV is the mode's environment name.
func NewPreprocessor(mode domain.BuildMode) *Preprocessor {
	return &Preprocessor{vars: map[string]string{"NODE_ENV": mode.EnvName()}}
}

// Step implements ports.Transformer.
func (p *Preprocessor) Step() domain.Step {
	return domain.StepPreprocess
}

// Apply implements ports.Transformer.
func (p *Preprocessor) Apply(_ context.Context, _ *domain.Task, in []domain.Artifact, _ io.Writer) ([]domain.Artifact, error) {
	out := make([]domain.Artifact, 0, len(in))
	for _, a := range in {
		if path.Ext(a.Path) != ".js" {
			out = append(out, a)
			continue
		}

		content, err := p.process(string(a.Content))
		if err != nil {
			return nil, transformFailure(err, "preprocessing failed", a.Source)
		}
		a.Content = []byte(content)
		out = append(out, a)
	}
	return out, nil
}

func (p *Preprocessor) process(src string) (string, error) {
	lines := strings.Split(src, "\n")
	kept := make([]string, 0, len(lines))
	var active []bool

	for _, line := range lines {
		if m := ifDirective.FindStringSubmatch(line); m != nil {
			holds := p.vars[m[1]] == m[3]
			if m[2] == "!=" {
				holds = !holds
			}
			active = append(active, holds)
			continue
		}
		if endifDirective.MatchString(line) {
			if len(active) == 0 {
				return "", errors.New("@endif without @if")
			}
			active = active[:len(active)-1]
			continue
		}
		if !allTrue(active) {
			continue
		}
		kept = append(kept, p.echo(line))
	}

	if len(active) > 0 {
		return "", errors.New("unterminated @if")
	}
	return strings.Join(kept, "\n"), nil
}

func (p *Preprocessor) echo(line string) string {
	return echoDirective.ReplaceAllStringFunc(line, func(directive string) string {
		name := echoDirective.FindStringSubmatch(directive)[1]
		if value, ok := p.vars[name]; ok {
			return value
		}
		return directive
	})
}

func allTrue(conds []bool) bool {
	for _, c := range conds {
		if !c {
			return false
		}
	}
	return true
}
