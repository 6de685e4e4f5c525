package ports

import "context"

// Reloader notifies live-reload clients that the output changed.
//
//go:generate mockgen -source=devserver.go -destination=mocks/mock_devserver.go -package=mocks
type Reloader interface {
	Reload(ctx context.Context) error
}

// DevServer serves the output directory during development.
type DevServer interface {
	Reloader
	// Start binds port and serves dir in the background until ctx is done.
	// Binding happens before Start returns; it returns the server URL.
	Start(ctx context.Context, dir string, port int) (string, error)
	// Wait blocks until the server has shut down.
	Wait() error
}

// Browser opens URLs for the user.
type Browser interface {
	Open(url string) error
}
