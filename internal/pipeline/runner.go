package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/hevcshrink/internal/check"
	"github.com/backmassage/hevcshrink/internal/config"
	"github.com/backmassage/hevcshrink/internal/display"
	"github.com/backmassage/hevcshrink/internal/ffmpeg"
	"github.com/backmassage/hevcshrink/internal/fileutil"
	"github.com/backmassage/hevcshrink/internal/logging"
	"github.com/backmassage/hevcshrink/internal/naming"
	"github.com/backmassage/hevcshrink/internal/planner"
	"github.com/backmassage/hevcshrink/internal/probe"
	"github.com/backmassage/hevcshrink/internal/term"
)

// Prober returns ffprobe's text report for a file.
type Prober interface {
	Probe(ctx context.Context, path string) (string, error)
}

// Encoder encodes one file to the scratch path, choosing the codec.
type Encoder interface {
	Encode(ctx context.Context, in, out string, duration float64) (ffmpeg.Result, error)
	Locked() string
}

// Runner processes a tree one file at a time: classify, encode, judge,
// replace. The zero value is not usable; build one with [NewRunner].
type Runner struct {
	Cfg     *config.Config
	Log     *logging.Logger
	Prober  Prober
	Encoder Encoder
	Policy  planner.Policy

	// Scratch is the single encode output path reused for every file.
	Scratch string
	// FreeSpace reports bytes available in a directory; nil disables the
	// free-space check.
	FreeSpace func(dir string) (uint64, error)
	// Out receives the summary table.
	Out io.Writer

	announced bool
}

// NewRunner wires a Runner to the real ffprobe and ffmpeg binaries named in
// cfg. An encode progress bar is shown when stdout is a terminal.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	session := ffmpeg.NewSession(cfg.FFmpegBin, ffmpeg.LadderFromConfig(cfg))
	if cfg.Verbose {
		session.Tee = os.Stderr
	}
	if term.IsTerminal(os.Stdout) {
		session.Progress = func(codec string, duration float64) ffmpeg.Progress {
			return ffmpeg.NewProgressBar(os.Stdout, "  "+codec, duration)
		}
	}
	return &Runner{
		Cfg:       cfg,
		Log:       log,
		Prober:    probe.New(cfg.FFprobeBin),
		Encoder:   session,
		Policy:    planner.PolicyFromConfig(cfg),
		Scratch:   naming.ScratchPath(cfg.ScratchDir),
		FreeSpace: check.ScratchSpace,
		Out:       os.Stdout,
	}
}

// Run is the top-level batch entry point: it builds a Runner for cfg and
// processes cfg.RootPath.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	return NewRunner(cfg, log).Run(ctx)
}

// Run discovers files under the configured root and processes each one
// sequentially. Per-file failures are recorded in the stats and never stop
// the run; only a discovery failure is returned as an error.
func (r *Runner) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	defer func() { _ = ffmpeg.RemoveScratch(r.Scratch) }()

	files, err := Discover(r.Cfg.RootPath)
	if err != nil {
		return stats, fmt.Errorf("discover %s: %w", r.Cfg.RootPath, err)
	}
	stats.Total = len(files)
	r.logBatchHeader(&stats)

	if len(files) == 0 {
		r.Log.Info("No files to compress")
		return stats, nil
	}

	for i, path := range files {
		if ctx.Err() != nil {
			stats.Interrupted = true
			r.Log.Warn("Interrupted")
			break
		}
		stats.Current = i + 1
		res, candidate := r.processFile(ctx, path, &stats)
		if candidate {
			stats.Candidates++
		}
		if ctx.Err() != nil && res.Status == StatusFailed {
			stats.Interrupted = true
		}
		stats.record(res)
	}

	if stats.Candidates == 0 && !stats.Interrupted {
		r.Log.Info("No files to compress")
	}
	r.logSummary(&stats)
	return stats, nil
}

// processFile handles one file: stat → probe → classify → encode → judge →
// replace. The second result reports whether the file was a candidate.
func (r *Runner) processFile(ctx context.Context, path string, stats *RunStats) (FileResult, bool) {
	res := FileResult{Path: path}
	basename := filepath.Base(path)
	r.Log.Info("[%d/%d] %s", stats.Current, stats.Total, basename)

	// --- Validate ---
	fi, err := os.Stat(path)
	if err != nil {
		r.Log.Error("Cannot stat file: %v", err)
		return r.fail(res, err.Error()), false
	}
	res.InSize = fi.Size()

	// --- Classify ---
	var cls planner.Classification
	meta, err := r.Prober.Probe(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(res, "interrupted"), false
		}
		r.Log.Warn("  Cannot probe file: %v", err)
		cls = planner.ClassifyProbeFailure(r.Policy)
	} else {
		cls = planner.Classify(meta, res.InSize, r.Policy)
	}
	if cls.HasDuration {
		r.Log.Debug(r.Cfg.Verbose, "  Duration %.1fs, density %s", cls.Duration, display.FormatRate(cls.Density))
	}
	if cls.Compressed {
		res.Status = StatusSkipped
		res.Note = skipNote(cls)
		r.Log.Skip("  Already compressed (%s), skipping", res.Note)
		return res, false
	}

	// --- Free space ---
	if r.FreeSpace != nil {
		dir := filepath.Dir(r.Scratch)
		if free, err := r.FreeSpace(dir); err == nil && free < uint64(res.InSize) {
			r.Log.Warn("  Not enough space in %s (%s free, file is %s), skipping",
				dir, display.FormatBytes(int64(free)), display.FormatBytes(res.InSize))
			return r.fail(res, "not enough scratch space"), true
		}
	}

	// --- Encode ---
	r.Log.Info("  Encoding %s", display.FormatBytes(res.InSize))
	start := time.Now()
	enc, err := r.Encoder.Encode(ctx, path, r.Scratch, cls.Duration)
	res.Elapsed = time.Since(start)
	r.logAttempts(enc)
	if err != nil {
		if ctx.Err() != nil {
			r.Log.Warn("  Interrupted, original untouched")
			return r.fail(res, "interrupted"), true
		}
		r.Log.Error("  Encode failed: %v", err)
		if n := len(enc.Attempts); n > 0 {
			r.logStderr(enc.Attempts[n-1].Stderr)
		}
		return r.fail(res, err.Error()), true
	}
	res.Codec = enc.Codec
	if !r.announced {
		r.announced = true
		r.Log.Info("  Using %s for the rest of this run", r.Encoder.Locked())
	}

	// --- Judge ---
	outInfo, err := os.Stat(r.Scratch)
	if err != nil {
		r.Log.Error("  Encoded output missing: %v", err)
		return r.fail(res, err.Error()), true
	}
	res.OutSize = outInfo.Size()
	v := planner.Judge(res.InSize, res.OutSize, r.Policy)
	if !v.Accept {
		_ = ffmpeg.RemoveScratch(r.Scratch)
		res.Status = StatusRejected
		res.Note = v.Reason
		r.Log.Warn("  Compression too small: %s -> %s (%s), keeping original",
			display.FormatBytes(res.InSize), display.FormatBytes(res.OutSize), display.FormatRatio(v.Ratio))
		return res, true
	}

	// --- Replace ---
	if err := fileutil.ReplaceFile(r.Scratch, path); err != nil {
		_ = ffmpeg.RemoveScratch(r.Scratch)
		r.Log.Error("  Cannot replace original: %v", err)
		return r.fail(res, err.Error()), true
	}
	res.Status = StatusCompressed
	r.Log.Success("  Compressed %s -> %s (%s) with %s in %s",
		display.FormatBytes(res.InSize), display.FormatBytes(res.OutSize),
		display.FormatRatio(v.Ratio), res.Codec, display.FormatElapsed(res.Elapsed))
	return res, true
}

func (r *Runner) fail(res FileResult, note string) FileResult {
	res.Status = StatusFailed
	res.Note = note
	return res
}

func skipNote(cls planner.Classification) string {
	switch cls.Reason {
	case planner.ReasonEncoderTag:
		return "HEVC stream"
	case planner.ReasonLowDensity:
		return "low bitrate, " + display.FormatRate(cls.Density)
	case planner.ReasonUnprobeable:
		return "unreadable by ffprobe"
	}
	return string(cls.Reason)
}

// logAttempts reports failed ladder attempts; the successful one is
// reported by the caller.
func (r *Runner) logAttempts(enc ffmpeg.Result) {
	for _, a := range enc.Attempts {
		if a.Err == nil {
			continue
		}
		if a.Unavailable {
			r.Log.Debug(r.Cfg.Verbose, "  %s is not available here, dropping it", a.Codec)
			continue
		}
		r.Log.Warn("  %s failed after %s: %v", a.Codec, display.FormatElapsed(a.Elapsed), a.Err)
	}
}

func (r *Runner) logStderr(stderr string) {
	lines := ffmpeg.StderrTail(stderr, 20)
	if len(lines) == 0 {
		return
	}
	r.Log.Error("  Last ffmpeg output:")
	for _, l := range lines {
		r.Log.Error("    %s", l)
	}
}

// --- Logging helpers ---

func (r *Runner) logBatchHeader(stats *RunStats) {
	r.Log.Info("Session %s", r.Log.Session())
	r.Log.Info("Found %d video files in %s", stats.Total, r.Cfg.RootPath)
	r.Log.Info("Codec ladder: %s", strings.Join(r.Cfg.Encoders, " > "))
	r.Log.Debug(r.Cfg.Verbose, "Scratch file: %s", r.Scratch)
	r.Log.Debug(r.Cfg.Verbose, "Keep results below %.0f%% of the original and saving at least %s",
		r.Policy.MaxRatio*100, display.FormatBytes(r.Policy.MinSavings))
}

func (r *Runner) logSummary(stats *RunStats) {
	r.Log.Info("==============================")
	r.Log.Info("Done: %d compressed, %d kept original, %d skipped, %d failed",
		stats.Compressed, stats.Rejected, stats.Skipped, stats.Failed)

	if rows := summaryRows(stats); len(rows) > 0 && r.Out != nil {
		fmt.Fprintln(r.Out, display.RenderTable(
			[]string{"File", "Result", "Before", "After", "Codec", "Time"},
			rows,
			[]display.Align{display.AlignLeft, display.AlignLeft, display.AlignRight, display.AlignRight, display.AlignLeft, display.AlignRight},
		))
	}

	saved := stats.SpaceSaved()
	if stats.Compressed > 0 {
		r.Log.Success("Total space reclaimed: %s (%s -> %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	}
}

// summaryRows lists every file that reached the encoder.
func summaryRows(stats *RunStats) [][]string {
	var rows [][]string
	for _, res := range stats.Results {
		if res.Status == StatusSkipped {
			continue
		}
		after := "-"
		if res.OutSize > 0 {
			after = display.FormatBytes(res.OutSize)
		}
		codec := res.Codec
		if codec == "" {
			codec = "-"
		}
		elapsed := "-"
		if res.Elapsed > 0 {
			elapsed = display.FormatElapsed(res.Elapsed)
		}
		rows = append(rows, []string{
			filepath.Base(res.Path),
			string(res.Status),
			display.FormatBytes(res.InSize),
			after,
			codec,
			elapsed,
		})
	}
	return rows
}
