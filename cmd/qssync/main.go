// Package main provides the qssync CLI entrypoint.
package main

import (
	"os"

	"github.com/quicksight-tools/qssync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
