package fs

import (
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.VendorLocator = (*VendorLocator)(nil)

// vendorIgnores are directories inside vendored packages that never hold runtime files.
var vendorIgnores = []string{"test", "tests", "node_modules"}

// VendorLocator finds third-party library files inside the vendor directory.
type VendorLocator struct {
	walker *Walker
}

// NewVendorLocator creates a VendorLocator.
func NewVendorLocator(walker *Walker) *VendorLocator {
	return &VendorLocator{walker: walker}
}

// Locate walks root/vendorDir once and returns the files matching any of
// patterns, sorted and relative to root. A missing vendor directory yields no files.
func (v *VendorLocator) Locate(root, vendorDir string, patterns []string) ([]string, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(domain.ErrGlobFailed, "pattern", pattern)
		}
	}

	var found []string
	for path := range v.walker.WalkFiles(filepath.Join(root, filepath.FromSlash(vendorDir)), vendorIgnores) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relativize vendor file"), "path", path)
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range patterns {
			if doublestar.MatchUnvalidated(pattern, rel) {
				found = append(found, rel)
				break
			}
		}
	}

	slices.Sort(found)
	return found, nil
}
