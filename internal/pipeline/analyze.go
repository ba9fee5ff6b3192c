package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/hevcshrink/internal/config"
	"github.com/backmassage/hevcshrink/internal/display"
	"github.com/backmassage/hevcshrink/internal/logging"
	"github.com/backmassage/hevcshrink/internal/planner"
	"github.com/backmassage/hevcshrink/internal/probe"
	"github.com/backmassage/hevcshrink/internal/term"
)

// ScanRow holds the classified per-file data for the scan report.
type ScanRow struct {
	Path        string
	Size        int64
	Duration    float64
	HasDuration bool
	Density     float64
	Candidate   bool
	Verdict     string
	Flag        string // "", "outlier", or "extreme" by density among candidates.
}

// ScanReport is the result of a read-only classification pass.
type ScanReport struct {
	Rows       []ScanRow
	Candidates int
	// CandidateBytes is the total size of files that would be encoded.
	CandidateBytes int64
}

// Scan discovers video files under cfg.RootPath, classifies each one the way
// a compression run would, and prints a report. It never writes to the tree.
func Scan(ctx context.Context, cfg *config.Config, log *logging.Logger, out io.Writer) (ScanReport, error) {
	return scan(ctx, cfg, log, probe.New(cfg.FFprobeBin), out)
}

func scan(ctx context.Context, cfg *config.Config, log *logging.Logger, prober Prober, out io.Writer) (ScanReport, error) {
	var report ScanReport
	files, err := Discover(cfg.RootPath)
	if err != nil {
		return report, fmt.Errorf("discover %s: %w", cfg.RootPath, err)
	}
	if len(files) == 0 {
		log.Warn("No video files found in %s", cfg.RootPath)
		return report, nil
	}

	total := len(files)
	log.Info("Scanning %d files in %s", total, cfg.RootPath)

	policy := planner.PolicyFromConfig(cfg)
	isTTY := out == os.Stdout && term.IsTerminal(os.Stdout)
	var unreadable int

	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress(out)
			}
			log.Warn("Interrupted")
			return report, ctx.Err()
		}
		printProgress(out, isTTY, i+1, total, unreadable, filepath.Base(path))

		fi, err := os.Stat(path)
		if err != nil {
			if isTTY {
				clearProgress(out)
			}
			log.Warn("Cannot stat %s: %v", filepath.Base(path), err)
			continue
		}
		row := ScanRow{Path: path, Size: fi.Size()}

		var cls planner.Classification
		meta, err := prober.Probe(ctx, path)
		if err != nil {
			unreadable++
			cls = planner.ClassifyProbeFailure(policy)
		} else {
			cls = planner.Classify(meta, row.Size, policy)
		}
		row.Duration, row.HasDuration, row.Density = cls.Duration, cls.HasDuration, cls.Density
		row.Candidate = !cls.Compressed
		row.Verdict = scanVerdict(cls, err != nil)
		if row.Candidate {
			report.Candidates++
			report.CandidateBytes += row.Size
		}
		report.Rows = append(report.Rows, row)
	}
	if isTTY {
		clearProgress(out)
	}

	flagDensityOutliers(report.Rows)
	printScanTable(out, report.Rows)
	printScanSummary(log, &report, unreadable)
	return report, nil
}

func scanVerdict(cls planner.Classification, probeFailed bool) string {
	switch {
	case cls.Compressed:
		return "skip: " + skipNote(cls)
	case probeFailed:
		return "encode (unreadable)"
	default:
		return "encode"
	}
}

// flagDensityOutliers marks candidates whose density sits far above or below
// the rest of the candidates.
func flagDensityOutliers(rows []ScanRow) {
	var vals []float64
	for _, r := range rows {
		if r.Candidate && r.HasDuration {
			vals = append(vals, r.Density)
		}
	}
	b := computeStats(vals)
	for i := range rows {
		if rows[i].Candidate && rows[i].HasDuration {
			rows[i].Flag = b.classify(rows[i].Density)
		}
	}
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printScanTable(out io.Writer, rows []ScanRow) {
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		duration, density := "n/a", "n/a"
		if r.HasDuration {
			duration = fmt.Sprintf("%.0fs", r.Duration)
			density = display.FormatRate(r.Density)
		}
		table = append(table, []string{
			truncateName(filepath.Base(r.Path), 50),
			display.FormatBytes(r.Size),
			duration,
			density,
			r.Verdict + formatFlag(r.Flag),
		})
	}
	fmt.Fprintln(out, display.RenderTable(
		[]string{"File", "Size", "Duration", "Density", "Verdict"},
		table,
		[]display.Align{display.AlignLeft, display.AlignRight, display.AlignRight, display.AlignRight, display.AlignLeft},
	))
}

func printScanSummary(log *logging.Logger, report *ScanReport, unreadable int) {
	var outliers int
	for _, r := range report.Rows {
		if r.Flag != "" {
			outliers++
		}
	}
	log.Info("Scanned %d files: %d to encode (%s), %d already compressed",
		len(report.Rows), report.Candidates, display.FormatBytes(report.CandidateBytes),
		len(report.Rows)-report.Candidates)
	if unreadable > 0 {
		log.Warn("  %d file(s) could not be probed", unreadable)
	}
	if outliers > 0 {
		log.Warn("  %d file(s) with unusual density flagged [*]/[!]", outliers)
	}
	if report.Candidates == 0 {
		log.Info("No files to compress")
	}
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return " " + term.Red + "[!]" + term.NC
	case "outlier":
		return " " + term.Yellow + "[*]" + term.NC
	default:
		return ""
	}
}

func truncateName(name string, max int) string {
	r := []rune(name)
	if len(r) <= max {
		return name
	}
	return string(r[:max-1]) + "…"
}

// printProgress shows a live probe counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op.
func printProgress(out io.Writer, isTTY bool, current, total, unreadable int, name string) {
	if !isTTY {
		return
	}
	pct := current * 100 / total
	status := fmt.Sprintf("  Probing [%d/%d] %d%% ", current, total, pct)
	if unreadable > 0 {
		status += fmt.Sprintf("(%d unreadable) ", unreadable)
	}
	status += truncateName(name, 40)

	// Pad to 80 chars to overwrite previous longer lines, then \r.
	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(out, "\r%s", status)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress(out io.Writer) {
	fmt.Fprintf(out, "\r%s\r", strings.Repeat(" ", 80))
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
