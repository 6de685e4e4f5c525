package devserver

import (
	"io"

	"github.com/pkg/browser"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Browser = (*Browser)(nil)

// Browser opens URLs with the platform's default browser.
type Browser struct{}

// NewBrowser creates a Browser. Output of the launcher process is discarded.
func NewBrowser() *Browser {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Browser{}
}

// Open opens url.
func (b *Browser) Open(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open browser"), "url", url)
	}
	return nil
}
