package app

import (
	"context"
	"path/filepath"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/kiln/internal/adapters/devserver"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/executor"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/kiln/internal/engine/planner"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/kiln/internal/engine/trigger"
	"go.trai.ch/zerr"
)

// session holds the objects built for one invocation.
type session struct {
	app       *App
	cfg       *domain.BuildConfig
	planner   *planner.Planner
	executor  *executor.Executor
	renderer  ports.Renderer
	tracer    *telemetry.OTelTracer
	coalescer *trigger.Coalescer

	mu       sync.Mutex
	watching bool
	serving  bool
	wg       sync.WaitGroup
}

func newSession(a *App, cfg *domain.BuildConfig, store ports.FingerprintStore, renderer ports.Renderer) *session {
	s := &session{
		app:      a,
		cfg:      cfg,
		planner:  planner.New(cfg),
		renderer: renderer,
		tracer:   telemetry.NewOTelTracer(renderer),
	}

	// Reload goes to the dev server only in development
	var reloader ports.Reloader = devserver.Noop{}
	if !cfg.Mode.IsProduction() {
		reloader = a.server
	}

	transform := pipeline.New(cfg, a.resolver, a.vendor, a.hasher, store, a.transformers.Transformers(cfg))
	s.executor = executor.New(cfg, transform, a.resolver, a.injector, store, reloader, executor.Services{
		Watch: s.watch,
		Serve: s.serve,
	})

	s.coalescer = trigger.New(s.runGraph, func(entry string, err error) {
		a.logger.Error(zerr.With(err, "graph", entry))
	})
	s.coalescer.Cover(planner.GraphCompile, planner.GraphStylesReload)
	return s
}

// runGraph plans and executes the named graph.
func (s *session) runGraph(ctx context.Context, entry string) error {
	graph, err := s.planner.Graph(entry)
	if err != nil {
		return err
	}

	// Clean has nothing worth rendering
	if entry == planner.GraphClean {
		sched := scheduler.NewScheduler(s.executor, telemetry.NewNoOpTracer(), s.app.logger, true)
		if err := sched.Run(ctx, graph); err != nil {
			return err
		}
		s.app.logger.Info("removed " + s.cfg.Paths.Output())
		return nil
	}

	if err := s.renderer.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = s.renderer.Stop()
		if err := s.renderer.Wait(); err != nil {
			s.app.logger.Warn("renderer: " + err.Error())
		}
	}()

	sched := scheduler.NewScheduler(s.executor, s.tracer, s.app.logger, s.cfg.Mode.Strict())
	return sched.Run(ctx, graph)
}

// background reports whether the watcher or the dev server were started.
func (s *session) background() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching || s.serving
}

// watch starts the watcher on the source directory and re-runs the bound
// entry points on every change batch.
func (s *session) watch(ctx context.Context) error {
	root := filepath.Join(s.cfg.Root, s.cfg.Layout.Source)
	if err := s.app.watcher.Start(ctx, root); err != nil {
		return err
	}

	s.mu.Lock()
	s.watching = true
	s.mu.Unlock()

	bindings := s.planner.Bindings()
	s.wg.Go(func() {
		for event := range s.app.watcher.Events() {
			for _, entry := range s.match(event.Paths, bindings) {
				s.app.logger.Debug("change detected, running " + entry)
				s.coalescer.Fire(ctx, entry)
			}
		}
		if err := s.app.watcher.Err(); err != nil {
			s.app.logger.Error(err)
		}
	})
	return nil
}

// match returns the entry points bound to any of paths, in binding order.
func (s *session) match(paths []string, bindings []domain.WatchBinding) []string {
	var entries []string
	for _, p := range paths {
		rel, err := filepath.Rel(s.cfg.Root, p)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, b := range bindings {
			entry := b.Entry.String()
			if slices.Contains(entries, entry) {
				continue
			}
			if ok, _ := doublestar.Match(b.Pattern.String(), rel); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// serve starts the dev server on the output directory and opens the browser.
func (s *session) serve(ctx context.Context) error {
	dir := filepath.Join(s.cfg.Root, s.cfg.Paths.Output())
	url, err := s.app.server.Start(ctx, dir, s.cfg.Server.Port)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.serving = true
	s.mu.Unlock()

	s.app.logger.Info("serving " + s.cfg.Paths.Output() + " at " + url)
	if s.cfg.Server.Open {
		if err := s.app.browser.Open(url); err != nil {
			s.app.logger.Warn("failed to open browser: " + err.Error())
		}
	}
	return nil
}

// close stops the background loops and waits for in-flight rebuilds.
func (s *session) close(ctx context.Context) {
	s.mu.Lock()
	watching, serving := s.watching, s.serving
	s.mu.Unlock()

	if watching {
		if err := s.app.watcher.Stop(); err != nil {
			s.app.logger.Warn("failed to stop watcher: " + err.Error())
		}
		s.wg.Wait()
		s.coalescer.Wait()
	}
	if serving {
		if err := s.app.server.Wait(); err != nil {
			s.app.logger.Warn("dev server: " + err.Error())
		}
	}
	if err := s.tracer.Shutdown(context.WithoutCancel(ctx)); err != nil {
		s.app.logger.Debug("failed to shut down tracer: " + err.Error())
	}
}
