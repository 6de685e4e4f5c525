package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file under cwd, applies the overrides and
	// returns the immutable configuration of this invocation.
	Load(cwd string, overrides domain.Overrides) (*domain.BuildConfig, error)
}
