// Package cmd provides the command-line interface for siminf, following
// sarchlab-akita/akita/cmd/root.go's rootCmd/Execute() shape.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "siminf",
	Short: "siminf runs parallel stochastic metapopulation disease simulations.",
	Long: `siminf loads a model definition, runs the parallel SSA + event ` +
		`scheduling engine to completion, and writes the resulting ` +
		`trajectory to CSV or SQLite.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
