// Package main is the entry point for the mc CLI.
package main

import (
	"os"

	"github.com/virtualphotonics/mcbatch/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
