package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// ExecOptions controls where process output goes besides the capture buffer.
type ExecOptions struct {
	Stdout io.Writer // Receives -progress output; nil discards it.
	Tee    io.Writer // Optional live copy of stderr (verbose mode).
}

// ExecFunc runs bin with args. [Execute] is the real implementation;
// tests substitute fakes.
type ExecFunc func(ctx context.Context, bin string, args []string, opts ExecOptions) ExecResult

// Execute runs bin with args. Stderr is always captured for failure
// classification and is additionally tee'd to opts.Tee when set. The
// process is killed if ctx is cancelled.
func Execute(ctx context.Context, bin string, args []string, opts ExecOptions) ExecResult {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderrBuf bytes.Buffer
	if opts.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, opts.Tee)
	} else {
		cmd.Stderr = &stderrBuf
	}
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
