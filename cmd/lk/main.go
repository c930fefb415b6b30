package main

import (
	"os"

	"github.com/nikbrunner/linkkoy/internal/cli"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "develop"

func main() {
	if err := cli.NewRootCmd(Version).Execute(); err != nil {
		os.Exit(1)
	}
}
