package domain

import "strings"

// Bundle is the name of a concatenated output artifact.
type Bundle string

const (
	// ScriptsBundle holds the concatenated application scripts.
	ScriptsBundle Bundle = "main.js"
	// TemplatesBundle holds the generated template cache module.
	TemplatesBundle Bundle = "templates.js"
	// VendorScriptBundle holds the concatenated third-party scripts.
	VendorScriptBundle Bundle = "dependencies.js"
	// VendorStyleBundle holds the concatenated third-party style sheets.
	VendorStyleBundle Bundle = "bower.css"
)

// String returns the file name.
func (b Bundle) String() string {
	return string(b)
}

// Fingerprinted returns the glob matching the bundle after a content hash was appended.
func (b Bundle) Fingerprinted() string {
	name := string(b)
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return name + "-*"
	}
	return name[:dot] + "-*" + name[dot:]
}
