// Package cmd provides the command-line interface for lifematrix.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lifematrix",
	Short: "Run Conway's Game of Life on an 8x16 LED matrix.",
	Long: `lifematrix runs the Game of Life firmware loop on the host. ` +
		`The LED matrix is driven through in-memory peripherals, and runs ` +
		`can be logged, recorded to SQLite and watched in a browser.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
