// Package style holds the colors and glyphs shared by the logger and the renderer.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Ember  = lipgloss.Color("#E8590C")
	Ash    = lipgloss.Color("#6B7280")
	Green  = lipgloss.Color("#2F9E44")
	Red    = lipgloss.Color("#E03131")
	Yellow = lipgloss.Color("#F08C00")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)
