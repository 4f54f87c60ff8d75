package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "buzzer %s\n", version)
		fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintf(out, "  module: %s\n", info.Main.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
