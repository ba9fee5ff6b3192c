package planner

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// efficientEncoderPatterns match ffprobe text that identifies an HEVC stream.
var efficientEncoderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`TAG:encoder\s*=.*x265`),
	regexp.MustCompile(`codec_name\s*=\s*hevc`),
	regexp.MustCompile(`codec_long_name\s*=\s*H\.265`),
}

// HasEfficientEncoderTag reports whether meta contains an HEVC/x265 marker.
func HasEfficientEncoderTag(meta string) bool {
	for _, re := range efficientEncoderPatterns {
		if re.MatchString(meta) {
			return true
		}
	}
	return false
}

// DurationSeconds extracts a duration from ffprobe text output. The
// [FORMAT] section's value wins; otherwise the first usable stream value is
// used. "N/A", unparsable and non-positive values count as absent.
func DurationSeconds(meta string) (float64, bool) {
	var (
		inFormat   bool
		streamDur  float64
		haveStream bool
		formatDur  float64
		haveFormat bool
	)
	sc := bufio.NewScanner(strings.NewReader(meta))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "[FORMAT]":
			inFormat = true
			continue
		case "[/FORMAT]":
			inFormat = false
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != "duration" {
			continue
		}
		d, ok := parseDuration(value)
		if !ok {
			continue
		}
		if inFormat && !haveFormat {
			formatDur, haveFormat = d, true
		} else if !inFormat && !haveStream {
			streamDur, haveStream = d, true
		}
	}
	if haveFormat {
		return formatDur, true
	}
	return streamDur, haveStream
}

func parseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, false
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// Density returns size/duration in bytes per second. Callers must ensure
// duration is positive.
func Density(size int64, duration float64) float64 {
	return float64(size) / duration
}

// IsDensityLow reports whether size/duration falls strictly below threshold
// (bytes per second). A non-positive duration never counts as low.
func IsDensityLow(size int64, duration, threshold float64) bool {
	if duration <= 0 {
		return false
	}
	return Density(size, duration) < threshold
}
