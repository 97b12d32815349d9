package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/freeeve/stake-lattice/api/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
