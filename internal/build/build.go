// Package build holds build-time information.
package build

// Version, Commit and Date are overwritten by linker flags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info formats the build information as shown by kiln version.
func Info() string {
	return "version " + Version + " (commit: " + Commit + ", date: " + Date + ")"
}
