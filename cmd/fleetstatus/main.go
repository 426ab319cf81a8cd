// @title fleetstatus API
// @version 1.0
// @description Cached health, location and metrics of a fleet of remote hosts.
// @BasePath /
package main

import (
	"fmt"
	"os"

	"evalgo.org/fleetstatus/internal/commands"
	"evalgo.org/fleetstatus/internal/version"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime
	version.GitCommit = GitCommit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
