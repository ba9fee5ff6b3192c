// Command hevcshrink re-encodes the video files of a directory tree to HEVC
// in place, keeping each result only when it saves enough space.
//
// It resolves configuration, validates that ffmpeg can run, and then either
// runs the compression pipeline, a read-only scan, or system diagnostics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(stderr, "hevcshrink: %v\n", err)
		}
		return 1
	}
	return 0
}
