package domain

// WatchBinding maps a glob to the graph entry point re-run when a matching file changes.
type WatchBinding struct {
	// Pattern is a slash-separated glob relative to the project root.
	Pattern InternedString
	// Entry is the name of the graph to run.
	Entry InternedString
}

// NewWatchBinding creates a binding from pattern to entry.
func NewWatchBinding(pattern, entry string) WatchBinding {
	return WatchBinding{
		Pattern: NewInternedString(pattern),
		Entry:   NewInternedString(entry),
	}
}
