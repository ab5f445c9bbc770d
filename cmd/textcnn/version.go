package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Filled in by the linker on release builds.
var (
	Version    = "dev"
	CommitHash = "n/a"
	BuildTime  = "n/a"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("textcnn %s-%s (%s)\n", Version, CommitHash, BuildTime)
		fmt.Printf("%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
