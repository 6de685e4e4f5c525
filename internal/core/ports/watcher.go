package ports

import (
	"context"
	"iter"
)

// WatchEvent represents a batch of file system changes delivered by the watcher.
type WatchEvent struct {
	// Paths are the changed files as absolute paths, sorted.
	Paths []string
}

// Watcher defines the interface for watching file system changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching the given root directory recursively.
	// It returns an error if the watcher fails to start.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of debounced change batches. The iterator
	// ends when the watcher stops or the watch primitive fails.
	Events() iter.Seq[WatchEvent]
	// Err returns the observation error that ended the event stream, if any.
	Err() error
}
