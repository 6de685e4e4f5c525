package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrGraphNotValidated is returned when a graph is walked before Validate succeeded.
	ErrGraphNotValidated = zerr.New("graph has not been validated")

	// ErrGraphNotFound is returned when a named graph does not exist.
	ErrGraphNotFound = zerr.New("graph not found")

	// ErrInvalidMode is returned when a build mode name is not recognised.
	ErrInvalidMode = zerr.New("invalid build mode, expected 'development' or 'production'")

	// ErrTransformFailed is returned when an external collaborator rejects a task's input.
	ErrTransformFailed = zerr.New("transform failed")

	// ErrLintFailed is returned when script validation reports problems in strict mode.
	ErrLintFailed = zerr.New("lint failed")

	// ErrGraphAborted is returned when a task failure aborts the remaining groups.
	ErrGraphAborted = zerr.New("build aborted")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrUnknownTaskKind is returned when no executor handles a task kind.
	ErrUnknownTaskKind = zerr.New("unknown task kind")

	// ErrUnknownStep is returned when a pipeline step has no implementation.
	ErrUnknownStep = zerr.New("unknown pipeline step")

	// ErrMissingBundleName is returned when a bundling step runs without a bundle name.
	ErrMissingBundleName = zerr.New("bundle name required")

	// ErrWatchFailed is returned when the file system watch primitive fails.
	ErrWatchFailed = zerr.New("file watch failed")

	// ErrServerBind is returned when the dev server cannot bind its port.
	ErrServerBind = zerr.New("failed to bind dev server port")

	// ErrInjectMarkerMissing is returned when the index document lacks injection markers.
	ErrInjectMarkerMissing = zerr.New("index injection marker not found")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidPort is returned when the configured port is out of range.
	ErrInvalidPort = zerr.New("invalid port")

	// ErrGlobFailed is returned when a glob pattern is malformed.
	ErrGlobFailed = zerr.New("failed to glob path")

	// ErrFileReadFailed is returned when a source file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read file")

	// ErrFileWriteFailed is returned when an artifact cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write file")

	// ErrCleanFailed is returned when the output directory cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output directory")

	// ErrStoreReadFailed is returned when the incremental cache cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read incremental cache")

	// ErrStoreUnmarshalFailed is returned when the incremental cache cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal incremental cache")

	// ErrStoreMarshalFailed is returned when the incremental cache cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal incremental cache")

	// ErrStoreWriteFailed is returned when the incremental cache cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write incremental cache")

	// ErrPathOutsideRoot is returned when a configured directory resolves outside the project root.
	ErrPathOutsideRoot = zerr.New("path is outside the project root")

	// ErrTaskRecovered marks a development-mode task failure that kept the previous output.
	ErrTaskRecovered = zerr.New("task failed, previous output kept")

	// ErrCommandFailed is returned when an external tool exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")
)
