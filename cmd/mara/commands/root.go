package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mara",
	Short: "Mara - Multi-agent research assistant",
	Long: `Mara is a multi-agent research assistant that coordinates specialized
workers through a shared blackboard: acquisition, synthesis, validation,
reporting, and change detection, driven entirely by status transitions.

Point it at an article source and ask questions in plain language; follow-up
questions reuse the knowledge it has already built.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
