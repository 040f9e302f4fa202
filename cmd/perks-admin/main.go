// Package main is the entry point for the perks-admin CLI
package main

import (
	"os"

	"github.com/MrEthical07/perksAdmin/internal/cli"
	"github.com/MrEthical07/perksAdmin/internal/output"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(output.Describe(err).ExitCode)
	}
}
