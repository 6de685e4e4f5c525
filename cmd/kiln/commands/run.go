package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Build, then watch and serve in development",
		Long: "Build the project. Without --compress kiln then watches the sources, " +
			"rebuilds on change and serves the output with live reload until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Up(cmd.Context(), c.runOptions())
		},
	}
}

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Clean and build the project once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), c.runOptions())
		},
	}
}

func (c *CLI) newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Compile application assets without cleaning or vendor bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Compile(cmd.Context(), c.runOptions())
		},
	}
}
