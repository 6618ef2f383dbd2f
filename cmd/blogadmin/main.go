// Package main provides the blogadmin CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/blogadmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
