package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			data, _ := json.MarshalIndent(map[string]string{
				"version": Version,
				"commit":  Commit,
			}, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("routeval %s (%s)\n", Version, Commit)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
