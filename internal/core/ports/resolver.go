package ports

// InputResolver expands globs into concrete files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs returns the regular files under root matching any of the
	// slash-separated patterns. Paths are relative to root, slash-separated,
	// de-duplicated and sorted. A pattern matching nothing is not an error.
	ResolveInputs(patterns []string, root string) ([]string, error)
}

// VendorLocator resolves a local third-party library directory into a flat file list.
type VendorLocator interface {
	// Locate walks the vendor directory and returns the files matching any
	// of the patterns, relative to root, in a stable order.
	Locate(root, vendorDir string, patterns []string) ([]string, error)
}
