package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Prober runs ffprobe. The zero value uses "ffprobe" from PATH.
type Prober struct {
	Bin string
}

// New returns a Prober that invokes bin.
func New(bin string) *Prober {
	return &Prober{Bin: bin}
}

func (p *Prober) bin() string {
	if p == nil || strings.TrimSpace(p.Bin) == "" {
		return "ffprobe"
	}
	return p.Bin
}

// Args returns the ffprobe arguments used to report on path.
func Args(path string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "panic",
		"-show_streams",
		"-show_format",
		path,
	}
}

// Probe runs ffprobe on path and returns its text report (stdout). A nonzero
// exit or a missing binary is returned as an error; callers decide how to
// classify an unreadable file.
func (p *Prober) Probe(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.bin(), Args(path)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("ffprobe %q: exit %d: %s", path, exitErr.ExitCode(), msg)
			}
			return "", fmt.Errorf("ffprobe %q: exit %d", path, exitErr.ExitCode())
		}
		return "", fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return string(out), nil
}
