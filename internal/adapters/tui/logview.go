package tui

import (
	"bytes"
	"strings"

	"github.com/vito/midterm"
)

// LogView holds the output of one task. The raw bytes are kept as written and
// replayed into a virtual terminal, so carriage returns and colors from
// external tools display as they would in a shell.
type LogView struct {
	raw bytes.Buffer
	vt  *midterm.Terminal
}

// NewLogView creates a LogView wrapping lines at width columns.
func NewLogView(width int) *LogView {
	v := &LogView{vt: midterm.NewAutoResizingTerminal()}
	v.Resize(width)
	return v
}

// Write implements io.Writer.
func (v *LogView) Write(p []byte) (int, error) {
	v.raw.Write(p)
	return v.vt.Write(p)
}

// String returns the raw output.
func (v *LogView) String() string {
	return v.raw.String()
}

// Resize sets the wrap width. Non-positive widths are ignored.
func (v *LogView) Resize(width int) {
	if width > 0 {
		v.vt.ResizeX(width)
	}
}

// Tail renders the last n lines of the terminal.
func (v *LogView) Tail(n int) string {
	used := v.vt.UsedHeight()
	if n <= 0 || used == 0 {
		return ""
	}

	var b strings.Builder
	start := max(used-n, 0)
	for row := start; row < used; row++ {
		if row > start {
			b.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&b, row)
	}
	return strings.TrimRight(b.String(), "\n")
}
