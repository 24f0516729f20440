package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := GitTag
		if tag == "" {
			tag = "dev"
		}
		if jsonOut {
			return printJSON(map[string]string{
				"version": tag,
				"commit":  GitCommit,
				"built":   BuildTime,
				"go":      runtime.Version(),
			})
		}
		fmt.Printf("libreria %s\n", tag)
		fmt.Printf("  commit: %s\n", GitCommit)
		fmt.Printf("  built: %s\n", BuildTime)
		fmt.Printf("  go: %s\n", runtime.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
