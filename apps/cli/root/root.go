package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the Accompany CLI. Subcommands (provision, profiles) are attached here.
var rootCmd = &cobra.Command{
	Use:           "accompany",
	Short:         "Accompany server CLI",
	Long:          "Server utilities for Accompany (headless site provisioning, stored connection profiles).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
