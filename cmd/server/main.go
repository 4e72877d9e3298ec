// Package main implements the scry-analytics command: the HTTP server that
// records study sessions and serves learning analytics, plus its maintenance
// subcommands.
package main

import (
	"os"

	"github.com/phrazzld/scry-analytics/internal/config"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}
