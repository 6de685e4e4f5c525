package ports

import "go.trai.ch/kiln/internal/core/domain"

// FingerprintStore is the incremental-build cache: path to last-seen content fingerprint,
// partitioned by category.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type FingerprintStore interface {
	// Changed reports whether fingerprint differs from the one recorded for path.
	Changed(category domain.Category, path, fingerprint string) bool
	// Commit records fingerprint for path. Callers commit only after the file was written.
	Commit(category domain.Category, path, fingerprint string)
	// Flush persists the cache.
	Flush() error
	// Reset drops every entry and removes the persisted cache.
	Reset() error
}
