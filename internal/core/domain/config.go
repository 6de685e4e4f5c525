package domain

// Tools holds the external commands used by transforms. Each command is an
// argv slice; the "{input}" argument is replaced with the input file path.
// An empty command disables the optional step that uses it.
type Tools struct {
	Styles []string
	Lint   []string
	Images []string
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Port int
	Open bool
}

// DefaultPort is the dev server port used when none is configured.
const DefaultPort = 1337

// BuildConfig is the configuration of one invocation.
// It is built once at startup and must not be mutated afterwards.
type BuildConfig struct {
	Mode      BuildMode
	Root      string
	Layout    Layout
	Paths     PathSet
	Tools     Tools
	Server    ServerConfig
	CachePath string
}

// NewBuildConfig assembles a BuildConfig, resolving the PathSet for mode.
func NewBuildConfig(mode BuildMode, root string, layout Layout, tools Tools, server ServerConfig) *BuildConfig {
	if server.Port == 0 {
		server.Port = DefaultPort
	}
	return &BuildConfig{
		Mode:      mode,
		Root:      root,
		Layout:    layout,
		Paths:     layout.Resolve(mode),
		Tools:     tools,
		Server:    server,
		CachePath: DefaultCachePath(mode),
	}
}

// DefaultTools returns the commands used when kiln.yaml does not set any.
func DefaultTools() Tools {
	return Tools{
		Styles: []string{"lessc", "{input}"},
	}
}

// Overrides are the per-invocation settings taken from flags and the environment.
// Zero values leave the configuration file untouched.
type Overrides struct {
	ConfigPath string
	Compress   bool
	Port       int
	NoOpen     bool
}
