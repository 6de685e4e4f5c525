package domain

import (
	"path"
	"slices"
)

// Category is a logical asset category.
type Category string

const (
	// CategoryIndex is the root HTML document.
	CategoryIndex Category = "index"
	// CategoryFonts covers font files copied verbatim.
	CategoryFonts Category = "fonts"
	// CategoryImages covers raster and vector images.
	CategoryImages Category = "images"
	// CategoryStyles covers style sheets compiled from the base style entry point.
	CategoryStyles Category = "styles"
	// CategoryScripts covers application scripts.
	CategoryScripts Category = "scripts"
	// CategoryPartials covers HTML partials turned into a template cache.
	CategoryPartials Category = "partials"
	// CategoryVendorScripts covers third-party scripts bundled into one file.
	CategoryVendorScripts Category = "vendor:scripts"
	// CategoryVendorStyles covers third-party style sheets bundled into one file.
	CategoryVendorStyles Category = "vendor:styles"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryIndex,
		CategoryFonts,
		CategoryImages,
		CategoryStyles,
		CategoryScripts,
		CategoryPartials,
		CategoryVendorScripts,
		CategoryVendorStyles,
	}
}

// PathEntry holds the globs and destination of one category.
// Globs and directories are slash-separated and relative to the project root.
type PathEntry struct {
	// Inputs are the globs a transform reads.
	Inputs []string
	// Watch are the globs whose changes re-trigger the category.
	Watch []string
	// Dest is the destination directory.
	Dest string
}

// InjectGlobs are the output globs referenced from the index document,
// relative to the output directory and in injection order.
type InjectGlobs struct {
	Styles  []string
	Scripts []string
}

// PathSet maps each asset category to its globs for one BuildMode.
// It is read-only after construction.
type PathSet struct {
	mode    BuildMode
	output  string
	entries map[Category]PathEntry
	inject  InjectGlobs
}

// Layout describes where sources, vendor libraries and outputs live.
type Layout struct {
	Source            string
	Vendor            string
	DevelopmentOutput string
	ProductionOutput  string
	// VendorScripts and VendorStyles override the vendor globs when set.
	VendorScripts []string
	VendorStyles  []string
}

// DefaultLayout returns the layout used when no configuration overrides it.
func DefaultLayout() Layout {
	return Layout{
		Source:            "src",
		Vendor:            "bower_components",
		DevelopmentOutput: "www",
		ProductionOutput:  "dist",
	}
}

// ResolvePaths returns the PathSet of the default layout for mode.
func ResolvePaths(mode BuildMode) PathSet {
	return DefaultLayout().Resolve(mode)
}

// OutputFor returns the output directory used by mode.
func (l Layout) OutputFor(mode BuildMode) string {
	if mode.IsProduction() {
		return l.ProductionOutput
	}
	return l.DevelopmentOutput
}

// Resolve computes the PathSet for mode. It is a pure function of the layout and mode.
func (l Layout) Resolve(mode BuildMode) PathSet {
	src := l.Source
	out := l.OutputFor(mode)

	one := func(glob string) []string { return []string{glob} }

	vendorScripts := slices.Clone(l.VendorScripts)
	if len(vendorScripts) == 0 {
		vendorScripts = one(path.Join(l.Vendor, "**", "*.js"))
	}
	vendorStyles := slices.Clone(l.VendorStyles)
	if len(vendorStyles) == 0 {
		vendorStyles = one(path.Join(l.Vendor, "**", "*.css"))
	}

	entries := map[Category]PathEntry{
		CategoryIndex: {
			Inputs: one(path.Join(src, "index.html")),
			Watch:  one(path.Join(src, "index.html")),
			Dest:   out,
		},
		CategoryFonts: {
			Inputs: one(path.Join(src, "assets", "fonts", "**", "*")),
			Watch:  one(path.Join(src, "assets", "fonts", "**", "*")),
			Dest:   path.Join(out, "fonts"),
		},
		CategoryImages: {
			Inputs: one(path.Join(src, "assets", "images", "**", "*")),
			Watch:  one(path.Join(src, "assets", "images", "**", "*")),
			Dest:   path.Join(out, "images"),
		},
		CategoryStyles: {
			Inputs: one(path.Join(src, "styles", "main.less")),
			Watch:  one(path.Join(src, "styles", "**", "*.less")),
			Dest:   path.Join(out, "styles"),
		},
		CategoryScripts: {
			Inputs: one(path.Join(src, "app", "**", "*.js")),
			Watch:  one(path.Join(src, "app", "**", "*.js")),
			Dest:   path.Join(out, "app"),
		},
		CategoryPartials: {
			Inputs: one(path.Join(src, "app", "**", "*.html")),
			Watch:  one(path.Join(src, "app", "**", "*.html")),
			Dest:   path.Join(out, "app"),
		},
		CategoryVendorScripts: {
			Inputs: vendorScripts,
			Dest:   path.Join(out, "app"),
		},
		CategoryVendorStyles: {
			Inputs: vendorStyles,
			Dest:   path.Join(out, "styles"),
		},
	}

	inject := InjectGlobs{
		Styles: []string{"styles/" + VendorStyleBundle.String(), "styles/**/*.css"},
	}
	if mode.IsProduction() {
		inject.Scripts = []string{
			"app/" + VendorScriptBundle.Fingerprinted(),
			"app/" + TemplatesBundle.Fingerprinted(),
			"app/" + ScriptsBundle.Fingerprinted(),
		}
	} else {
		inject.Scripts = []string{
			"app/" + VendorScriptBundle.String(),
			"app/**/*.js",
		}
	}

	return PathSet{
		mode:    mode,
		output:  out,
		entries: entries,
		inject:  inject,
	}
}

// Mode returns the mode the set was resolved for.
func (p PathSet) Mode() BuildMode {
	return p.mode
}

// Output returns the output directory.
func (p PathSet) Output() string {
	return p.output
}

// Entry returns a copy of the entry for c.
func (p PathSet) Entry(c Category) PathEntry {
	e := p.entries[c]
	return PathEntry{
		Inputs: slices.Clone(e.Inputs),
		Watch:  slices.Clone(e.Watch),
		Dest:   e.Dest,
	}
}

// Inject returns a copy of the index injection globs.
func (p PathSet) Inject() InjectGlobs {
	return InjectGlobs{
		Styles:  slices.Clone(p.inject.Styles),
		Scripts: slices.Clone(p.inject.Scripts),
	}
}
