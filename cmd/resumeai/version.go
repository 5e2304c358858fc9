package main

import (
	"fmt"
	"runtime"
	runtimedebug "runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "resumeai %s (%s)\n", version, buildRevision())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildRevision reports the VCS revision stamped by the go tool, falling back
// to the toolchain version.
func buildRevision() string {
	info, ok := runtimedebug.ReadBuildInfo()
	if ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return runtime.Version()
}
