// Package cli implements the command-line interface for devcyclesim.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = newRootCmd()

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devcyclesim",
		Short: "Development pipeline simulator",
		Long: `devcyclesim simulates user stories flowing through a specification ->
development -> testing -> rollout pipeline under limited, time-varying
capacity, including rework that sends stories back to earlier steps.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newGenerateCmd(),
		newViewCmd(),
		newWatchCmd(),
		newConfigCmd(),
		newLogsCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
