// Package config holds runtime configuration: defaults, the optional TOML
// config file, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// KnownEncoders lists the ffmpeg video encoders the codec ladder can use,
// most preferred first.
var KnownEncoders = []string{
	"hevc_nvenc",
	"hevc_qsv",
	"hevc_vaapi",
	"hevc_videotoolbox",
	"libx265",
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by [Load] from the optional config file, then by CLI flags, before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths.
	RootPath   string // Positional arg; default ".".
	ScratchDir string // Default: "" (os.TempDir()).
	ConfigFile string // Resolved config file path (may not exist).

	// External tools.
	FFmpegBin  string // Default: "ffmpeg".
	FFprobeBin string // Default: "ffprobe".

	// Classification.
	DensityMiBPerSec float64 // Default: 0.3. Below this a file counts as compressed.
	SkipUnprobeable  bool    // Default: false. Probe failures fall through to "candidate".

	// Encoding.
	Encoders    []string // Codec ladder order. Default: KnownEncoders.
	X265CRF     int      // Default: 25.
	VaapiDevice string   // Default: "/dev/dri/renderD128".

	// Accept/reject policy.
	MaxRatio      float64 // Default: 0.9. Output/input at or above this is rejected.
	MinSavingsMiB float64 // Default: 2. Savings below this are rejected.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// MiB is one mebibyte in bytes.
const MiB = 1024 * 1024

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		RootPath:         ".",
		FFmpegBin:        "ffmpeg",
		FFprobeBin:       "ffprobe",
		DensityMiBPerSec: 0.3,
		Encoders:         slices.Clone(KnownEncoders),
		X265CRF:          25,
		VaapiDevice:      "/dev/dri/renderD128",
		MaxRatio:         0.9,
		MinSavingsMiB:    2,
		ColorMode:        ColorAuto,
	}
}

// DensityThreshold returns the density threshold in bytes per second.
func (c *Config) DensityThreshold() float64 {
	return c.DensityMiBPerSec * MiB
}

// MinSavingsBytes returns the absolute savings floor in bytes.
func (c *Config) MinSavingsBytes() int64 {
	return int64(math.Round(c.MinSavingsMiB * MiB))
}

// NormalizeDirArg strips trailing slashes from a path argument.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" && path != "" {
		return "/"
	}
	return trimmed
}

// Validate checks value ranges and enum fields.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if strings.TrimSpace(c.FFmpegBin) == "" {
		return errors.New("ffmpeg binary must not be empty")
	}
	if strings.TrimSpace(c.FFprobeBin) == "" {
		return errors.New("ffprobe binary must not be empty")
	}
	if c.DensityMiBPerSec <= 0 {
		return fmt.Errorf("density threshold must be positive (got %v)", c.DensityMiBPerSec)
	}
	if c.MaxRatio <= 0 || c.MaxRatio > 1 {
		return fmt.Errorf("max ratio must be in (0, 1] (got %v)", c.MaxRatio)
	}
	if c.MinSavingsMiB < 0 {
		return fmt.Errorf("min savings must not be negative (got %v)", c.MinSavingsMiB)
	}
	if c.X265CRF < 0 || c.X265CRF > 51 {
		return fmt.Errorf("x265 CRF must be between 0 and 51 (got %d)", c.X265CRF)
	}

	if len(c.Encoders) == 0 {
		return errors.New("encoder list must not be empty")
	}
	seen := make(map[string]bool, len(c.Encoders))
	for _, name := range c.Encoders {
		if !slices.Contains(KnownEncoders, name) {
			return fmt.Errorf("unknown encoder %q (known: %s)", name, strings.Join(KnownEncoders, ", "))
		}
		if seen[name] {
			return fmt.Errorf("encoder %q listed twice", name)
		}
		seen[name] = true
	}
	if slices.Contains(c.Encoders, "hevc_vaapi") && strings.TrimSpace(c.VaapiDevice) == "" {
		return errors.New("hevc_vaapi needs a vaapi device")
	}

	if c.RootPath == "" {
		return errors.New("need a path to scan")
	}
	return nil
}
