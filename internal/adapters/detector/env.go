// Package detector inspects the terminal to pick how output is rendered.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/ui/output"
	"golang.org/x/term"
)

// Environment describes the terminal kiln writes to.
type Environment struct {
	// Interactive is true when stderr is a terminal outside CI.
	Interactive bool
	// Profile is the color profile to render with.
	Profile termenv.Profile
}

// Detect inspects stderr and the CI environment variable.
func Detect() Environment {
	return Resolve(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI"))
}

// Resolve builds the environment from a TTY check and the value of CI.
// Non-interactive output is never colored.
func Resolve(isTTY bool, ci string) Environment {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return Environment{Profile: output.PlainProfile()}
	}
	return Environment{Interactive: true, Profile: output.ColorProfile()}
}

// ColorProfile returns the profile of the detected environment.
func ColorProfile() termenv.Profile {
	return Detect().Profile
}
