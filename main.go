package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/classlib/internal/cli"
	"github.com/mrlokans/classlib/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	root := cli.NewRootCommand(cfg, fmt.Sprintf("%s (%s)", Version, Commit))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
