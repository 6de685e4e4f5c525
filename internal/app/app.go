// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/tui"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/planner"
	"go.trai.ch/zerr"
)

// TransformerSource builds the step transformers of a configuration.
type TransformerSource interface {
	Transformers(cfg *domain.BuildConfig) []ports.Transformer
}

// logSettings is implemented by the logger adapter.
type logSettings interface {
	SetLevel(level slog.Level)
	SetDebugFile(path string) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	resolver     ports.InputResolver
	vendor       ports.VendorLocator
	hasher       ports.Hasher
	transformers TransformerSource
	injector     ports.Injector
	server       ports.DevServer
	browser      ports.Browser
	watcher      ports.Watcher

	stdout     io.Writer
	stderr     io.Writer
	env        func() detector.Environment
	tuiOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	resolver ports.InputResolver,
	vendor ports.VendorLocator,
	hasher ports.Hasher,
	transformers TransformerSource,
	injector ports.Injector,
	server ports.DevServer,
	browser ports.Browser,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		resolver:     resolver,
		vendor:       vendor,
		hasher:       hasher,
		transformers: transformers,
		injector:     injector,
		server:       server,
		browser:      browser,
		watcher:      watcher,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		env:          detector.Detect,
	}
}

// WithOutput redirects the build output. Task output goes to stdout and
// progress lines to stderr.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithColorProfile overrides the detected color profile of the build output
// and treats the output as non-interactive.
func (a *App) WithColorProfile(profile termenv.Profile) *App {
	a.env = func() detector.Environment { return detector.Environment{Profile: profile} }
	return a
}

// WithTUIOptions passes extra program options to the interactive renderer.
func (a *App) WithTUIOptions(opts ...tea.ProgramOption) *App {
	a.tuiOptions = opts
	return a
}

// RunOptions configuration for the run methods.
type RunOptions struct {
	Overrides  domain.Overrides
	LogLevel   string
	LogFile    string
	OutputMode string
}

// Up builds the project. In development it then watches the sources and
// serves the output until ctx is done.
func (a *App) Up(ctx context.Context, opts RunOptions) error {
	return a.Run(ctx, planner.GraphSetup, opts)
}

// Build runs a clean build.
func (a *App) Build(ctx context.Context, opts RunOptions) error {
	return a.Run(ctx, planner.GraphBuild, opts)
}

// Compile runs the compile graph without cleaning.
func (a *App) Compile(ctx context.Context, opts RunOptions) error {
	return a.Run(ctx, planner.GraphCompile, opts)
}

// Clean removes the output directory and the incremental cache of the mode.
func (a *App) Clean(ctx context.Context, opts RunOptions) error {
	return a.Run(ctx, planner.GraphClean, opts)
}

// Run executes the named graph.
func (a *App) Run(ctx context.Context, entry string, opts RunOptions) error {
	// 1. Configure logging
	if err := a.configureLogging(opts); err != nil {
		return err
	}

	mode, err := detector.ParseOutputMode(opts.OutputMode)
	if err != nil {
		return err
	}

	// 2. Load the configuration
	cfg, err := a.configLoader.Load(".", opts.Overrides)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	a.logger.Debug("building " + entry + " in " + cfg.Mode.String() + " mode")

	// 3. Open the incremental cache
	store, err := cas.NewStore(filepath.Join(cfg.Root, cfg.CachePath))
	if err != nil {
		return err
	}

	// 4. Run the graph
	ctx, cancel := context.WithCancel(ctx)
	s := newSession(a, cfg, store, a.renderer(mode, entry, cfg, cancel))
	defer func() {
		cancel()
		s.close(ctx)
	}()

	if err := s.runGraph(ctx, entry); err != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}

	// 5. Keep watching and serving until interrupted
	if s.background() {
		a.logger.Info("watching for changes, press Ctrl+C to stop")
		<-ctx.Done()
	}
	return nil
}

// renderer picks the interactive TUI or the linear renderer for a run.
// Quitting the TUI cancels the run.
func (a *App) renderer(mode detector.OutputMode, entry string, cfg *domain.BuildConfig, cancel func()) ports.Renderer {
	env := a.env()
	watching := entry == planner.GraphSetup && !cfg.Mode.IsProduction()
	if detector.ResolveMode(mode, env, watching) == detector.ModeTUI {
		opts := append([]tea.ProgramOption{tea.WithOutput(a.stderr)}, a.tuiOptions...)
		return tui.NewRenderer(cancel, opts...)
	}
	return linear.NewRenderer(a.stdout, a.stderr, func() termenv.Profile { return env.Profile })
}

func (a *App) configureLogging(opts RunOptions) error {
	settings, ok := a.logger.(logSettings)
	if !ok {
		return nil
	}
	if opts.LogLevel != "" {
		settings.SetLevel(logger.ParseLevel(opts.LogLevel, slog.LevelInfo))
	}
	if opts.LogFile != "" {
		return settings.SetDebugFile(opts.LogFile)
	}
	return nil
}
