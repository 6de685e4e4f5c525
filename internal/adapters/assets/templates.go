package assets

import (
	"context"
	"io"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
)

// TemplateModule is the Angular module registering the partials.
const TemplateModule = "templates"

var jsStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\r", `\r`,
	"\n", `\n`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// TemplateCache turns HTML partials into one script that fills Angular's $templateCache.
type TemplateCache struct {
	output string
}

// NewTemplateCache creates a TemplateCache for the given output directory.
// Partials are keyed by their URL below the output root.
func NewTemplateCache(output string) *TemplateCache {
	return &TemplateCache{output: strings.TrimSuffix(output, "/")}
}

// Step implements ports.Transformer.
func (c *TemplateCache) Step() domain.Step {
	return domain.StepTemplates
}

// Apply implements ports.Transformer.
func (c *TemplateCache) Apply(_ context.Context, task *domain.Task, in []domain.Artifact, _ io.Writer) ([]domain.Artifact, error) {
	if task.Bundle == "" {
		return nil, domain.ErrMissingBundleName
	}

	prefix := c.urlPrefix(task.Output.String())
	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b domain.Artifact) int { return strings.Compare(a.Path, b.Path) })

	var b strings.Builder
	b.WriteString("angular.module('" + TemplateModule + "', []).run(['$templateCache', function($templateCache) {\n")
	for _, a := range sorted {
		b.WriteString("  $templateCache.put('")
		b.WriteString(jsStringEscaper.Replace(prefix + a.Path))
		b.WriteString("', '")
		b.WriteString(jsStringEscaper.Replace(string(a.Content)))
		b.WriteString("');\n")
	}
	b.WriteString("}]);\n")

	return []domain.Artifact{{Path: task.Bundle.String(), Content: []byte(b.String())}}, nil
}

func (c *TemplateCache) urlPrefix(dest string) string {
	rel := strings.Trim(strings.TrimPrefix(dest, c.output), "/")
	if rel == "" {
		return "/"
	}
	return "/" + rel + "/"
}
