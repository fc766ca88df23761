// Command ghgfreight computes freight greenhouse gas emissions from supplier
// activity data and serves the calculation over HTTP.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rshade/ghgfreight/internal/cli"
	"github.com/rshade/ghgfreight/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(extractExitCode(err))
	}
}

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	root.SilenceErrors = true
	return root.Execute()
}

// extractExitCode returns the exit code carried by a cli.ExitError, 1 for any
// other error, and 0 for nil.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}
