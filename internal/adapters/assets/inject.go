package assets

import (
	"bytes"
	"html"
	"regexp"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Injector = (*Injector)(nil)

var injectBlock = regexp.MustCompile(`(?s)([ \t]*)<!--\s*inject:(css|js)\s*-->.*?<!--\s*endinject\s*-->`)

// Injector replaces the inject:css and inject:js blocks of an HTML document
// with link and script tags. Paths are written as given.
type Injector struct{}

// NewInjector creates an Injector.
func NewInjector() *Injector {
	return &Injector{}
}

// Inject implements ports.Injector. A document without any inject block is rejected.
func (i *Injector) Inject(index []byte, styles, scripts []string) ([]byte, error) {
	if !injectBlock.Match(index) {
		return nil, domain.ErrInjectMarkerMissing
	}

	return injectBlock.ReplaceAllFunc(index, func(block []byte) []byte {
		m := injectBlock.FindSubmatch(block)
		indent, kind := string(m[1]), string(m[2])

		var buf bytes.Buffer
		buf.WriteString(indent + "<!-- inject:" + kind + " -->\n")
		if kind == "css" {
			for _, href := range styles {
				buf.WriteString(indent + `<link rel="stylesheet" href="` + html.EscapeString(href) + `">` + "\n")
			}
		} else {
			for _, src := range scripts {
				buf.WriteString(indent + `<script src="` + html.EscapeString(src) + `"></script>` + "\n")
			}
		}
		buf.WriteString(indent + "<!-- endinject -->")
		return buf.Bytes()
	}), nil
}
