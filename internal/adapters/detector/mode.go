package detector

import "go.trai.ch/zerr"

// OutputMode represents how a graph run is rendered.
type OutputMode int

const (
	// ModeAuto picks the TUI for interactive one-shot builds.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive TUI renderer.
	ModeTUI
	// ModeLinear forces the line-oriented renderer.
	ModeLinear
)

// ErrUnknownOutputMode is returned for an unrecognized --output value.
var ErrUnknownOutputMode = zerr.New("unknown output mode")

// ParseOutputMode converts a flag value into an OutputMode.
// "ci" is accepted as an alias of "linear".
func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "", "auto":
		return ModeAuto, nil
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	default:
		return ModeAuto, zerr.With(ErrUnknownOutputMode, "output", s)
	}
}

// ResolveMode settles ModeAuto against the environment. Watch sessions
// always render linearly since their output outlives a single graph.
func ResolveMode(mode OutputMode, env Environment, watching bool) OutputMode {
	if mode != ModeAuto {
		return mode
	}
	if env.Interactive && !watching {
		return ModeTUI
	}
	return ModeLinear
}
