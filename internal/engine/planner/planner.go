// Package planner builds the named task graphs and watch bindings of a build configuration.
package planner

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Entry point names.
const (
	GraphCompile      = "compile"
	GraphStylesReload = "styles:reload"
	GraphBuild        = "build"
	GraphSetup        = "setup"
	GraphClean        = "clean"
)

// Task names.
const (
	TaskClean         = "clean"
	TaskVendorStyles  = "vendor:styles"
	TaskVendorScripts = "vendor:scripts"
	TaskScripts       = "scripts"
	TaskStyles        = "styles"
	TaskImages        = "images"
	TaskFonts         = "fonts"
	TaskPartials      = "partials"
	TaskIndex         = "index"
	TaskReload        = "reload"
	TaskWatch         = "watch"
	TaskServe         = "serve"
)

// Planner builds graphs for one configuration.
type Planner struct {
	cfg *domain.BuildConfig
}

// New creates a Planner for cfg.
func New(cfg *domain.BuildConfig) *Planner {
	return &Planner{cfg: cfg}
}

// Graph returns the validated graph of the named entry point. In production
// the setup entry point resolves to build.
func (p *Planner) Graph(name string) (*domain.Graph, error) {
	var tasks []*domain.Task
	switch name {
	case GraphCompile:
		tasks = p.compile()
	case GraphStylesReload:
		tasks = []*domain.Task{
			p.transform(TaskStyles, domain.CategoryStyles),
			domain.NewTask(TaskReload, domain.KindReload, TaskStyles),
		}
	case GraphBuild:
		tasks = p.build()
	case GraphSetup:
		if p.cfg.Mode.IsProduction() {
			name = GraphBuild
			tasks = p.build()
			break
		}
		tasks = append(p.build(),
			domain.NewTask(TaskWatch, domain.KindWatch, TaskReload),
			domain.NewTask(TaskServe, domain.KindServe, TaskWatch),
		)
	case GraphClean:
		tasks = []*domain.Task{domain.NewTask(TaskClean, domain.KindClean)}
	default:
		return nil, zerr.With(domain.ErrGraphNotFound, "graph", name)
	}

	g := domain.NewGraph(name)
	for _, task := range tasks {
		if err := g.AddTask(task); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// compile is {scripts, styles, images, fonts} then partials, index and reload.
// The first group depends on deps.
func (p *Planner) compile(deps ...string) []*domain.Task {
	return []*domain.Task{
		p.transform(TaskScripts, domain.CategoryScripts, deps...),
		p.transform(TaskStyles, domain.CategoryStyles, deps...),
		p.transform(TaskImages, domain.CategoryImages, deps...),
		p.transform(TaskFonts, domain.CategoryFonts, deps...),
		p.transform(TaskPartials, domain.CategoryPartials, TaskScripts, TaskStyles, TaskImages, TaskFonts),
		domain.NewTask(TaskIndex, domain.KindInject, TaskPartials),
		domain.NewTask(TaskReload, domain.KindReload, TaskIndex),
	}
}

// build is clean, then both vendor bundles, then compile.
func (p *Planner) build() []*domain.Task {
	tasks := []*domain.Task{
		domain.NewTask(TaskClean, domain.KindClean),
		p.transform(TaskVendorStyles, domain.CategoryVendorStyles, TaskClean),
		p.transform(TaskVendorScripts, domain.CategoryVendorScripts, TaskClean),
	}
	return append(tasks, p.compile(TaskVendorStyles, TaskVendorScripts)...)
}

func (p *Planner) transform(name string, c domain.Category, deps ...string) *domain.Task {
	return domain.NewTransformTask(name, c, p.cfg.Paths, deps...)
}

// Bindings returns the watch bindings of the configuration. Production builds
// do not watch.
func (p *Planner) Bindings() []domain.WatchBinding {
	if p.cfg.Mode.IsProduction() {
		return nil
	}

	var bindings []domain.WatchBinding
	for _, c := range []domain.Category{
		domain.CategoryPartials,
		domain.CategoryScripts,
		domain.CategoryImages,
		domain.CategoryFonts,
		domain.CategoryIndex,
	} {
		for _, glob := range p.cfg.Paths.Entry(c).Watch {
			bindings = append(bindings, domain.NewWatchBinding(glob, GraphCompile))
		}
	}
	for _, glob := range p.cfg.Paths.Entry(domain.CategoryStyles).Watch {
		bindings = append(bindings, domain.NewWatchBinding(glob, GraphStylesReload))
	}
	return bindings
}
