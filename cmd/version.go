package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "anthill %s compiled with %s\n", appVersion, runtime.Version())
		if global.verbose {
			fmt.Fprintf(out, "  commit:   %s\n", appCommit)
			fmt.Fprintf(out, "  date:     %s\n", appDate)
			fmt.Fprintf(out, "  built by: %s\n", appBuiltBy)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
