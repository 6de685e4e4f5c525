package domain

import "go.trai.ch/zerr"

// BuildMode selects the build variant for one invocation.
type BuildMode uint8

const (
	// ModeDevelopment produces unminified output, keeps going on transform
	// failures and enables the watcher and dev server.
	ModeDevelopment BuildMode = iota
	// ModeProduction minifies, bundles and fingerprints outputs and aborts on
	// the first transform failure.
	ModeProduction
)

// ModeFromCompress maps the compress flag onto a BuildMode.
func ModeFromCompress(compress bool) BuildMode {
	if compress {
		return ModeProduction
	}
	return ModeDevelopment
}

// ParseMode parses a mode name as written in configuration files.
func ParseMode(s string) (BuildMode, error) {
	switch s {
	case "development", "dev", "":
		return ModeDevelopment, nil
	case "production", "prod":
		return ModeProduction, nil
	default:
		return ModeDevelopment, zerr.With(ErrInvalidMode, "mode", s)
	}
}

// String returns the canonical mode name.
func (m BuildMode) String() string {
	if m == ModeProduction {
		return "production"
	}
	return "development"
}

// IsProduction reports whether m is the production variant.
func (m BuildMode) IsProduction() bool {
	return m == ModeProduction
}

// Strict reports whether transform failures abort the graph in this mode.
func (m BuildMode) Strict() bool {
	return m == ModeProduction
}

// EnvName is the environment name handed to script preprocessing.
func (m BuildMode) EnvName() string {
	if m == ModeProduction {
		return "production"
	}
	return "testing"
}
