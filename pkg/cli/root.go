// Package cli provides the routeval CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "routeval",
	Short: "routeval validates HTTP requests against route-attached JSON Schemas",
	Long: `routeval works with route definition files: each route carries a meta
object holding its schema, either as a full {type: object, properties: ...}
document or as a bare facet map (params, body, query, headers, cookies,
files).

The check command compiles every schema in a definitions file; the test
command validates a request fixture against one route's schema.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
