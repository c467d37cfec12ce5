package main

import (
	"os"

	"github.com/tingly-dev/tingly-porter/internal/cli"
)

// Build information variables
var (
	// Set by compiler via -ldflags
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
	platform  = "unknown"
)

func main() {
	root := cli.NewRootCommand(cli.BuildInfo{
		Version:   version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: goVersion,
		Platform:  platform,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
