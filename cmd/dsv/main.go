// Package main is the entry point for the dsv CLI.
package main

import (
	"errors"
	"os"

	"github.com/shapestone/shape-dsv/internal/cli"
	"github.com/shapestone/shape-dsv/internal/logging"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// Bad-data findings were already logged one by one.
		if !errors.Is(err, cli.ErrBadDataFound) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}
