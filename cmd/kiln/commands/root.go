// Package commands implements the CLI commands for the kiln asset builder.
package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
)

const (
	envPrefix = "KILN"

	compressFlagName = "compress"
	configFlagName   = "config"
	portFlagName     = "port"
	noOpenFlagName   = "no-open"
	logLevelFlagName = "log-level"
	logFileFlagName  = "log-file"
	outputFlagName   = "output"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	config  *viper.Viper
}

// Application represents the application logic interface.
type Application interface {
	Up(ctx context.Context, opts app.RunOptions) error
	Build(ctx context.Context, opts app.RunOptions) error
	Compile(ctx context.Context, opts app.RunOptions) error
	Clean(ctx context.Context, opts app.RunOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{
		app:    a,
		config: viper.New(),
	}

	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "A front-end asset build runner",
		Long:          "kiln builds, watches and serves a single-page application.\nWithout a command it runs up.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Up(cmd.Context(), c.runOptions())
		},
	}

	rootCmd.SetVersionTemplate("{{.Name}} " + build.Info() + "\n")
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.Bool(compressFlagName, false, "Build for production: minify, bundle and fingerprint into the production output")
	flags.StringP(configFlagName, "c", "", "Path to the configuration file (default "+domain.ConfigFileName+", optional)")
	flags.IntP(portFlagName, "p", 0, "Dev server port (default 1337)")
	flags.Bool(noOpenFlagName, false, "Do not open the browser when the dev server starts")
	flags.String(logLevelFlagName, "info", "Console log level: debug, info, warn or error")
	flags.String(logFileFlagName, "", "Mirror debug logs as JSON into a rotating file")
	flags.StringP(outputFlagName, "o", "auto", "Output mode: auto, tui or linear")
	c.bindFlags(flags)

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newUpCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCompileCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// bindFlags lets KILN_* environment variables set every flag.
func (c *CLI) bindFlags(flags *pflag.FlagSet) {
	c.config.SetEnvPrefix(envPrefix)
	c.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.config.AutomaticEnv()
	_ = c.config.BindPFlags(flags)
}

// runOptions reads the flags after cobra parsed them.
func (c *CLI) runOptions() app.RunOptions {
	return app.RunOptions{
		Overrides: domain.Overrides{
			ConfigPath: c.config.GetString(configFlagName),
			Compress:   c.config.GetBool(compressFlagName),
			Port:       c.config.GetInt(portFlagName),
			NoOpen:     c.config.GetBool(noOpenFlagName),
		},
		LogLevel:   c.config.GetString(logLevelFlagName),
		LogFile:    c.config.GetString(logFileFlagName),
		OutputMode: c.config.GetString(outputFlagName),
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
