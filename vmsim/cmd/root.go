// Package cmd provides the command-line interface for vmsim.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// newRootCmd creates the base command when called without any subcommands.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vmsim",
		Short: "vmsim simulates page replacement policies on memory traces.",
		Long: `vmsim replays a trace of memory accesses against a physical ` +
			`memory of a fixed number of page frames and counts the page ` +
			`faults and the dirty pages written back under LRU, FIFO, ` +
			`random, or second-chance replacement.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadDotEnv(".env")
		},
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSummaryCmd())

	return rootCmd
}

// loadDotEnv reads environment defaults from the file if it exists.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
