// Package check provides system diagnostics (the check command) and
// pre-run dependency validation (CheckDeps) for ffmpeg, ffprobe, the codec
// ladder encoders, and the scratch directory.
package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/hevcshrink/internal/config"
	"github.com/backmassage/hevcshrink/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrFfmpegNotFound = errors.New("can't run ffmpeg, try to install it")
)

// Logger is the minimal logging interface needed by this package.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(bool, string, ...any)
}

// CheckDeps is the pre-run validation: `ffmpeg -version` must succeed.
// A missing ffprobe is only a warning, since classification then treats
// every file as a candidate. Nothing is written to disk.
func CheckDeps(ctx context.Context, cfg *config.Config, log Logger) error {
	if _, _, err := run(ctx, cfg.FFmpegBin, "-version"); err != nil {
		return fmt.Errorf("%w (%s: %v)", ErrFfmpegNotFound, cfg.FFmpegBin, err)
	}
	if _, _, err := run(ctx, cfg.FFprobeBin, "-version"); err != nil {
		log.Warn("ffprobe unavailable (%s: %v); every file will be treated as a candidate", cfg.FFprobeBin, err)
	}
	return nil
}

// EncoderStatus is the diagnostic result for one ladder option.
type EncoderStatus struct {
	Name   string
	Listed bool   // Present in `ffmpeg -encoders`.
	Works  bool   // A short test encode succeeded.
	Detail string // Last stderr line of a failed test encode.
}

// Report is the outcome of [Run].
type Report struct {
	FFmpegVersion   string // First line of `ffmpeg -version`; empty if it failed.
	FFmpegErr       error
	FFprobeVersion  string
	FFprobeErr      error
	Encoders        []EncoderStatus
	ScratchDir      string
	ScratchErr      error  // Non-nil when the scratch dir is not writable.
	ScratchFree     uint64 // Bytes available; 0 when unknown.
	VaapiDeviceSeen bool   // The configured VAAPI device exists.
}

// Run gathers diagnostics. It is informational only and does not stop on
// failure. Encoder tests are skipped when ffmpeg itself cannot run.
func Run(ctx context.Context, cfg *config.Config) Report {
	r := Report{ScratchDir: scratchDir(cfg)}

	r.FFmpegVersion, r.FFmpegErr = version(ctx, cfg.FFmpegBin)
	r.FFprobeVersion, r.FFprobeErr = version(ctx, cfg.FFprobeBin)

	if r.FFmpegErr == nil {
		listed := map[string]bool{}
		if out, _, err := run(ctx, cfg.FFmpegBin, "-hide_banner", "-encoders"); err == nil {
			listed = ListedEncoders(out)
		}
		for _, opt := range ffmpeg.LadderFromConfig(cfg) {
			st := EncoderStatus{Name: opt.Name, Listed: listed[opt.Name]}
			if st.Listed {
				_, stderr, err := run(ctx, cfg.FFmpegBin, testEncodeArgs(opt)...)
				st.Works = err == nil
				if err != nil {
					if tail := ffmpeg.StderrTail(stderr, 1); len(tail) > 0 {
						st.Detail = tail[0]
					} else {
						st.Detail = err.Error()
					}
				}
			} else {
				st.Detail = "not built into this ffmpeg"
			}
			r.Encoders = append(r.Encoders, st)
		}
	}

	r.ScratchErr = CheckScratchDir(r.ScratchDir)
	if free, err := ScratchSpace(r.ScratchDir); err == nil {
		r.ScratchFree = free
	}
	r.VaapiDeviceSeen = pathExists(cfg.VaapiDevice)
	return r
}

// RunCheck logs a diagnostics [Report] and returns it. It returns an error
// only when ffmpeg cannot run.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) (Report, error) {
	log.Info("=== System Check ===")
	r := Run(ctx, cfg)

	if r.FFmpegErr != nil {
		log.Error("ffmpeg (%s) not usable: %v", cfg.FFmpegBin, r.FFmpegErr)
	} else {
		log.Success("ffmpeg: %s", r.FFmpegVersion)
	}
	if r.FFprobeErr != nil {
		log.Warn("ffprobe (%s) not usable: %v", cfg.FFprobeBin, r.FFprobeErr)
	} else {
		log.Success("ffprobe: %s", r.FFprobeVersion)
	}

	for _, st := range r.Encoders {
		switch {
		case st.Works:
			log.Success("encoder %s works", st.Name)
		case st.Listed:
			log.Warn("encoder %s is built in but failed a test encode: %s", st.Name, st.Detail)
		default:
			log.Debug(cfg.Verbose, "encoder %s: %s", st.Name, st.Detail)
		}
	}

	if r.ScratchErr != nil {
		log.Error("scratch dir %s: %v", r.ScratchDir, r.ScratchErr)
	} else {
		log.Success("scratch dir %s is writable", r.ScratchDir)
	}

	if r.FFmpegErr != nil {
		return r, fmt.Errorf("%w (%s)", ErrFfmpegNotFound, cfg.FFmpegBin)
	}
	return r, nil
}

// ListedEncoders parses `ffmpeg -encoders` output into the set of encoder
// names. Lines look like " V....D libx265   libx265 H.265 / HEVC".
func ListedEncoders(out string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 || strings.Trim(fields[0], "VAS.FXBD") != "" {
			continue
		}
		names[fields[1]] = true
	}
	return names
}

// --- internal helpers ---

// testEncodeArgs returns arguments for a 0.1 s synthetic encode with opt.
func testEncodeArgs(opt ffmpeg.Option) []string {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	args = append(args, opt.PreInput...)
	args = append(args, "-f", "lavfi", "-i", "color=black:s=256x256:d=0.1")
	args = append(args, opt.Codec...)
	return append(args, "-f", "null", "-")
}

func version(ctx context.Context, bin string) (string, error) {
	out, _, err := run(ctx, bin, "-version")
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(first), nil
}

// run executes name with args and returns stdout and stderr.
func run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
