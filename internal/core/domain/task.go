package domain

// TaskKind distinguishes what an executor does for a task.
type TaskKind uint8

const (
	// KindTransform runs a category pipeline over input files.
	KindTransform TaskKind = iota
	// KindClean removes the output directory and the incremental cache.
	KindClean
	// KindInject writes the index document with references to built assets.
	KindInject
	// KindReload notifies connected live-reload clients.
	KindReload
	// KindWatch starts the file-change watcher in the background.
	KindWatch
	// KindServe starts the dev server in the background.
	KindServe
)

// String returns a short name for the kind.
func (k TaskKind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindClean:
		return "clean"
	case KindInject:
		return "inject"
	case KindReload:
		return "reload"
	case KindWatch:
		return "watch"
	case KindServe:
		return "serve"
	default:
		return "unknown"
	}
}

// Task represents a unit of work in the build graph.
type Task struct {
	Name     InternedString
	Kind     TaskKind
	Category Category
	// Inputs are slash-separated globs relative to the project root.
	Inputs []InternedString
	// Output is the destination directory.
	Output InternedString
	// Steps is the concrete step list resolved from the build mode.
	Steps []Step
	// Bundle names the concatenated artifact for steps that produce one.
	Bundle       Bundle
	Dependencies []InternedString
}

// NewTransformTask builds a transform task for category c resolved against paths.
func NewTransformTask(name string, c Category, paths PathSet, deps ...string) *Task {
	entry := paths.Entry(c)
	variant := ResolveVariant(paths.Mode(), c)
	return &Task{
		Name:         NewInternedString(name),
		Kind:         KindTransform,
		Category:     c,
		Inputs:       internStrings(entry.Inputs),
		Output:       NewInternedString(entry.Dest),
		Steps:        variant.Steps,
		Bundle:       variant.Bundle,
		Dependencies: internStrings(deps),
	}
}

// NewTask builds a task of a non-transform kind.
func NewTask(name string, kind TaskKind, deps ...string) *Task {
	return &Task{
		Name:         NewInternedString(name),
		Kind:         kind,
		Dependencies: internStrings(deps),
	}
}

// HasStep reports whether s is part of the task's step list.
func (t *Task) HasStep(s Step) bool {
	for _, step := range t.Steps {
		if step == s {
			return true
		}
	}
	return false
}
