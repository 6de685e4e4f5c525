// Package config provides the configuration loader for kiln.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const maxPort = 65535

// Loader implements ports.ConfigLoader using an optional YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load builds the BuildConfig for cwd. A missing kiln.yaml yields the default
// layout unless the path was set explicitly through overrides.
func (l *Loader) Load(cwd string, overrides domain.Overrides) (*domain.BuildConfig, error) {
	configPath := overrides.ConfigPath
	explicit := configPath != ""
	if !explicit {
		configPath = domain.ConfigFileName
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}

	var kilnfile Kilnfile
	if err := readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		l.Logger.Debug(fmt.Sprintf("no %s found, using the default layout", domain.ConfigFileName))
	} else {
		l.Logger.Debug("loaded configuration from " + configPath)
	}

	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve project root"), "path", configPath)
	}

	layout, err := buildLayout(&kilnfile)
	if err != nil {
		return nil, err
	}

	server, err := buildServer(&kilnfile, overrides)
	if err != nil {
		return nil, err
	}

	mode := domain.ModeFromCompress(overrides.Compress)
	cfg := domain.NewBuildConfig(mode, root, layout, buildTools(&kilnfile), server)
	if kilnfile.Cache != "" {
		cfg.CachePath = filepath.Join(filepath.FromSlash(kilnfile.Cache), mode.String()+".json")
	}

	return cfg, nil
}

func buildLayout(k *Kilnfile) (domain.Layout, error) {
	layout := domain.DefaultLayout()
	overlay(&layout.Source, k.Source)
	overlay(&layout.Vendor, k.Vendor.Dir)
	overlay(&layout.DevelopmentOutput, k.Output.Development)
	overlay(&layout.ProductionOutput, k.Output.Production)
	layout.VendorScripts = k.Vendor.Scripts
	layout.VendorStyles = k.Vendor.Styles

	for key, dir := range map[string]string{
		"source":             layout.Source,
		"vendor.dir":         layout.Vendor,
		"output.development": layout.DevelopmentOutput,
		"output.production":  layout.ProductionOutput,
	} {
		if !filepath.IsLocal(filepath.FromSlash(dir)) {
			return domain.Layout{}, zerr.With(zerr.With(domain.ErrPathOutsideRoot, "key", key), "path", dir)
		}
	}

	return layout, nil
}

func buildTools(k *Kilnfile) domain.Tools {
	tools := domain.DefaultTools()
	if len(k.Tools.Styles) > 0 {
		tools.Styles = k.Tools.Styles
	}
	tools.Lint = k.Tools.Lint
	tools.Images = k.Tools.Images
	return tools
}

func buildServer(k *Kilnfile, overrides domain.Overrides) (domain.ServerConfig, error) {
	server := domain.ServerConfig{Port: domain.DefaultPort, Open: true}
	if k.Server.Port != 0 {
		server.Port = k.Server.Port
	}
	if overrides.Port != 0 {
		server.Port = overrides.Port
	}
	if k.Server.Open != nil {
		server.Open = *k.Server.Open
	}
	if overrides.NoOpen {
		server.Open = false
	}

	if server.Port < 1 || server.Port > maxPort {
		return domain.ServerConfig{}, zerr.With(domain.ErrInvalidPort, "port", server.Port)
	}
	return server, nil
}

func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath comes from the user's working directory or flags
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	return nil
}
