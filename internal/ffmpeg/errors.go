package ffmpeg

import (
	"errors"
	"regexp"
	"strings"
)

// Sentinel errors returned by [Session.Encode].
var (
	// ErrAllCodecsFailed means no ladder option produced an output. Nothing
	// is locked in; the next file walks the ladder again.
	ErrAllCodecsFailed = errors.New("all codec options failed")

	// ErrLockedCodecFailed means the session's locked-in codec failed on
	// this file. The file is abandoned and the lock is kept.
	ErrLockedCodecFailed = errors.New("locked-in codec failed")
)

// reEncoderUnavailable matches stderr that shows an encoder cannot run on
// this machine at all (not built in, no device, no driver), as opposed to a
// failure caused by the particular input file.
var reEncoderUnavailable = regexp.MustCompile(
	`(?i)Unknown encoder|Encoder not found|` +
		`Cannot load (libcuda|nvcuda|libnvidia-encode)|` +
		`No (NVENC )?capable devices found|OpenEncodeSessionEx failed|` +
		`Failed to initialise VAAPI connection|No VA display found|` +
		`Cannot open (the )?DRM render node|Device creation failed|` +
		`Error creating a MFX session|Failed to create a hardware device|` +
		`Error: cannot create compression session|VTCompressionSessionCreate`)

// MatchEncoderUnavailable reports whether stderr shows the encoder is
// unusable on this machine.
func MatchEncoderUnavailable(stderr string) bool {
	return reEncoderUnavailable.MatchString(stderr)
}

// StderrTail returns the last n non-empty lines of stderr.
func StderrTail(stderr string, n int) []string {
	var lines []string
	for _, l := range strings.Split(stderr, "\n") {
		if l = strings.TrimRight(l, "\r"); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
