package config

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version string    `yaml:"version"`
	Source  string    `yaml:"source"`
	Vendor  VendorDTO `yaml:"vendor"`
	Output  OutputDTO `yaml:"output"`
	Tools   ToolsDTO  `yaml:"tools"`
	Server  ServerDTO `yaml:"server"`
	Cache   string    `yaml:"cache"`
}

// VendorDTO locates third-party libraries.
type VendorDTO struct {
	Dir     string   `yaml:"dir"`
	Scripts []string `yaml:"scripts"`
	Styles  []string `yaml:"styles"`
}

// OutputDTO names the output directory of each mode.
type OutputDTO struct {
	Development string `yaml:"development"`
	Production  string `yaml:"production"`
}

// ToolsDTO holds the external commands used by transforms.
type ToolsDTO struct {
	Styles []string `yaml:"styles"`
	Lint   []string `yaml:"lint"`
	Images []string `yaml:"images"`
}

// ServerDTO configures the development server.
type ServerDTO struct {
	Port int   `yaml:"port"`
	Open *bool `yaml:"open"`
}
