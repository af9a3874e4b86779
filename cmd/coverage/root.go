package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coverage",
		Short: "Coverage plans greedy area-coverage paths on weighted grids",
		Long: `Coverage moves a single agent across a weighted grid, preferring the
least visited neighbor each step, and stops when the step budget or the
deadline runs out.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML file with run parameters")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	runCmd := newRunCmd()
	rootCmd.AddCommand(runCmd, newServeCmd(), newVersionCmd())
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
