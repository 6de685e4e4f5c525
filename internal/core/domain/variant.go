package domain

import "slices"

// Step is one stage of a transform pipeline.
type Step string

const (
	// StepChanged drops files whose content matches the incremental cache.
	StepChanged Step = "changed"
	// StepPreprocess substitutes environment directives in scripts.
	StepPreprocess Step = "preprocess"
	// StepLint validates script syntax and runs the optional external linter.
	StepLint Step = "lint"
	// StepCompile runs the external style compiler.
	StepCompile Step = "compile"
	// StepOptimize runs the optional external image compressor.
	StepOptimize Step = "optimize"
	// StepTemplates turns HTML partials into a template cache module.
	StepTemplates Step = "templates"
	// StepConcat joins all artifacts into the task's bundle.
	StepConcat Step = "concat"
	// StepMinify minifies scripts and style sheets.
	StepMinify Step = "minify"
	// StepFingerprint appends a content hash to every file name.
	StepFingerprint Step = "fingerprint"
	// StepWrite writes artifacts to the destination directory.
	StepWrite Step = "write"
)

// Variant is the concrete pipeline of one category in one mode.
type Variant struct {
	Steps  []Step
	Bundle Bundle
}

type variantPair struct {
	development Variant
	production  Variant
}

// variants is the single BuildMode to pipeline mapping. Bundled categories
// skip StepChanged in production because a bundle needs every input.
var variants = map[Category]variantPair{
	CategoryScripts: {
		development: Variant{Steps: []Step{StepChanged, StepPreprocess, StepWrite}},
		production: Variant{
			Steps: []Step{
				StepPreprocess, StepLint, StepMinify, StepConcat, StepFingerprint, StepWrite,
			},
			Bundle: ScriptsBundle,
		},
	},
	CategoryStyles: {
		development: Variant{Steps: []Step{StepCompile, StepWrite}},
		production:  Variant{Steps: []Step{StepCompile, StepMinify, StepFingerprint, StepWrite}},
	},
	CategoryImages: {
		development: Variant{Steps: []Step{StepChanged, StepWrite}},
		production:  Variant{Steps: []Step{StepChanged, StepOptimize, StepWrite}},
	},
	CategoryFonts: {
		development: Variant{Steps: []Step{StepChanged, StepWrite}},
		production:  Variant{Steps: []Step{StepChanged, StepWrite}},
	},
	CategoryPartials: {
		development: Variant{Steps: []Step{StepTemplates, StepWrite}, Bundle: TemplatesBundle},
		production: Variant{
			Steps:  []Step{StepTemplates, StepMinify, StepFingerprint, StepWrite},
			Bundle: TemplatesBundle,
		},
	},
	CategoryVendorScripts: {
		development: Variant{Steps: []Step{StepConcat, StepWrite}, Bundle: VendorScriptBundle},
		production: Variant{
			Steps:  []Step{StepConcat, StepMinify, StepFingerprint, StepWrite},
			Bundle: VendorScriptBundle,
		},
	},
	CategoryVendorStyles: {
		development: Variant{Steps: []Step{StepConcat, StepMinify, StepWrite}, Bundle: VendorStyleBundle},
		production:  Variant{Steps: []Step{StepConcat, StepMinify, StepWrite}, Bundle: VendorStyleBundle},
	},
}

// ResolveVariant returns a copy of the pipeline for category c in mode.
// Categories without a pipeline resolve to a plain write.
func ResolveVariant(mode BuildMode, c Category) Variant {
	pair, ok := variants[c]
	if !ok {
		return Variant{Steps: []Step{StepWrite}}
	}
	v := pair.development
	if mode.IsProduction() {
		v = pair.production
	}
	return Variant{Steps: slices.Clone(v.Steps), Bundle: v.Bundle}
}
