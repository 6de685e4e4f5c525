package domain

// Artifact is a file flowing through a transform pipeline.
type Artifact struct {
	// Path is slash-separated and relative to the task's destination directory.
	Path string
	// Source is the file the artifact was read from, empty for generated files.
	Source string
	// Content holds the file bytes.
	Content []byte
}

// Clone returns a deep copy of the artifact.
func (a Artifact) Clone() Artifact {
	content := make([]byte, len(a.Content))
	copy(content, a.Content)
	return Artifact{Path: a.Path, Source: a.Source, Content: content}
}
