// Package main provides the leappage command.
package main

import (
	"os"

	"github.com/leapstack-labs/leappage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
