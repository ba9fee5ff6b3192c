package ffmpeg

import (
	"strconv"

	"github.com/backmassage/hevcshrink/internal/config"
)

// Option is one rung of the codec ladder: an encoder name plus the arguments
// it needs before the input (device setup) and after it (codec settings).
type Option struct {
	Name     string
	PreInput []string
	Codec    []string
}

// Hardware is true for every option except the software encoder.
func (o Option) Hardware() bool { return o.Name != "libx265" }

// NewOption returns the Option for a known encoder name. The second result
// is false for unknown names.
func NewOption(name string, cfg *config.Config) (Option, bool) {
	switch name {
	case "hevc_nvenc":
		return Option{
			Name:  name,
			Codec: []string{"-c:v", "hevc_nvenc", "-vtag", "hvc1", "-preset", "p5", "-rc", "vbr", "-cq", "28"},
		}, true
	case "hevc_qsv":
		return Option{
			Name:  name,
			Codec: []string{"-c:v", "hevc_qsv", "-vtag", "hvc1", "-global_quality", "28"},
		}, true
	case "hevc_vaapi":
		return Option{
			Name:     name,
			PreInput: []string{"-vaapi_device", cfg.VaapiDevice},
			Codec:    []string{"-vf", "format=nv12,hwupload", "-c:v", "hevc_vaapi", "-vtag", "hvc1", "-qp", "28"},
		}, true
	case "hevc_videotoolbox":
		return Option{
			Name:  name,
			Codec: []string{"-c:v", "hevc_videotoolbox", "-vtag", "hvc1", "-q:v", "60"},
		}, true
	case "libx265":
		return Option{
			Name: name,
			Codec: []string{
				"-c:v", "libx265",
				"-vtag", "hvc1",
				"-crf", strconv.Itoa(cfg.X265CRF),
				"-x265-params", "log-level=error",
			},
		}, true
	}
	return Option{}, false
}

// LadderFromConfig returns the options named in cfg.Encoders, in order.
// Unknown names are skipped; Config.Validate rejects them earlier.
func LadderFromConfig(cfg *config.Config) []Option {
	ladder := make([]Option, 0, len(cfg.Encoders))
	for _, name := range cfg.Encoders {
		if opt, ok := NewOption(name, cfg); ok {
			ladder = append(ladder, opt)
		}
	}
	return ladder
}

// DefaultLadder returns the full ladder with default settings: NVENC, Quick
// Sync, VAAPI, VideoToolbox, then libx265.
func DefaultLadder() []Option {
	cfg := config.DefaultConfig()
	return LadderFromConfig(&cfg)
}

// Build constructs the ffmpeg argument slice (without the binary name) that
// encodes in to out with opt. When progress is set, machine-readable
// progress is written to stdout and the stats line is suppressed.
func Build(opt Option, in, out string, progress bool) []string {
	args := make([]string, 0, 24)

	// --- Preamble ---
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")
	if progress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	// --- Device setup, then input ---
	args = append(args, opt.PreInput...)
	args = append(args, "-i", in)

	// --- Video codec ---
	args = append(args, opt.Codec...)

	// --- Output ---
	args = append(args, out)
	return args
}
