package assets

import (
	"context"
	"io"
	"path"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"go.trai.ch/kiln/internal/core/domain"
)

var mediaTypes = map[string]string{
	".css":  "text/css",
	".js":   "application/javascript",
	".html": "text/html",
}

// Minifier minifies scripts, style sheets and HTML. Other files pass through.
type Minifier struct {
	m *minify.M
}

// NewMinifier creates a Minifier.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/html", html.Minify)
	return &Minifier{m: m}
}

// Step implements ports.Transformer.
func (m *Minifier) Step() domain.Step {
	return domain.StepMinify
}

// Apply implements ports.Transformer.
func (m *Minifier) Apply(_ context.Context, _ *domain.Task, in []domain.Artifact, _ io.Writer) ([]domain.Artifact, error) {
	out := make([]domain.Artifact, 0, len(in))
	for _, a := range in {
		mediaType, ok := mediaTypes[path.Ext(a.Path)]
		if !ok {
			out = append(out, a)
			continue
		}

		minified, err := m.m.Bytes(mediaType, a.Content)
		if err != nil {
			return nil, transformFailure(err, "minification failed", a.Source)
		}
		a.Content = minified
		out = append(out, a)
	}
	return out, nil
}
