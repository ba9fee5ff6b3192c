// Package display formats sizes, ratios and durations for console output and
// renders summary tables.
package display

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable IEC size (e.g. "1.5 KiB", "700 MiB").
// Negative values are formatted by magnitude with a leading "-".
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatRatio renders an output/input ratio as a percentage of the original.
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatElapsed renders d rounded to the nearest tenth of a second below a
// minute and to the nearest second above.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return d.Round(100 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// FormatRate renders a density in MiB per second.
func FormatRate(bytesPerSec float64) string {
	return fmt.Sprintf("%.2f MiB/s", bytesPerSec/(1024*1024))
}
