package domain

import "path/filepath"

const (
	// KilnDirName is the name of the internal state directory.
	KilnDirName = ".kiln"

	// CacheDirName is the name of the incremental cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "kiln.yaml"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// IndexFileName is the name of the generated index document.
	IndexFileName = "index.html"

	// InputPlaceholder is replaced with the input path in tool commands.
	InputPlaceholder = "{input}"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the incremental cache file of mode.
// It joins .kiln, cache and <mode>.json.
func DefaultCachePath(mode BuildMode) string {
	return filepath.Join(KilnDirName, CacheDirName, mode.String()+".json")
}

// DefaultDebugLogPath returns the default path for the debug log.
// It joins .kiln and debug.log.
func DefaultDebugLogPath() string {
	return filepath.Join(KilnDirName, DebugLogFile)
}
