package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// fileConfig mirrors the TOML layout. It is seeded from the current Config
// so keys missing from the file keep their defaults.
type fileConfig struct {
	Paths struct {
		ScratchDir string `toml:"scratch_dir"`
	} `toml:"paths"`
	Tools struct {
		FFmpeg  string `toml:"ffmpeg"`
		FFprobe string `toml:"ffprobe"`
	} `toml:"tools"`
	Classify struct {
		DensityMiBPerSec float64 `toml:"density_mib_per_sec"`
		SkipUnprobeable  bool    `toml:"skip_unprobeable"`
	} `toml:"classify"`
	Encode struct {
		Encoders      []string `toml:"encoders"`
		X265CRF       int      `toml:"x265_crf"`
		VaapiDevice   string   `toml:"vaapi_device"`
		MaxRatio      float64  `toml:"max_ratio"`
		MinSavingsMiB float64  `toml:"min_savings_mib"`
	} `toml:"encode"`
	Logging struct {
		Color   string `toml:"color"`
		File    string `toml:"file"`
		Verbose bool   `toml:"verbose"`
	} `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/hevcshrink/config.toml")
}

// Load reads the config file at path (or the default location when path is
// empty) into cfg. A missing file at the default location is not an error;
// a missing file passed explicitly is. It reports whether a file was read.
func Load(cfg *Config, path string) (bool, error) {
	explicit := strings.TrimSpace(path) != ""
	resolved := path
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return false, err
		}
		resolved = p
	} else {
		p, err := expandPath(path)
		if err != nil {
			return false, err
		}
		resolved = p
	}
	cfg.ConfigFile = resolved

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return false, nil
		}
		return false, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	fc := toFile(cfg)
	fc.Encode.Encoders = nil
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&fc); err != nil {
		return false, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if fc.Encode.Encoders == nil {
		fc.Encode.Encoders = append([]string(nil), cfg.Encoders...)
	}
	if err := fromFile(cfg, &fc); err != nil {
		return false, err
	}
	return true, nil
}

func toFile(cfg *Config) fileConfig {
	var fc fileConfig
	fc.Paths.ScratchDir = cfg.ScratchDir
	fc.Tools.FFmpeg = cfg.FFmpegBin
	fc.Tools.FFprobe = cfg.FFprobeBin
	fc.Classify.DensityMiBPerSec = cfg.DensityMiBPerSec
	fc.Classify.SkipUnprobeable = cfg.SkipUnprobeable
	fc.Encode.Encoders = append([]string(nil), cfg.Encoders...)
	fc.Encode.X265CRF = cfg.X265CRF
	fc.Encode.VaapiDevice = cfg.VaapiDevice
	fc.Encode.MaxRatio = cfg.MaxRatio
	fc.Encode.MinSavingsMiB = cfg.MinSavingsMiB
	fc.Logging.Color = string(cfg.ColorMode)
	fc.Logging.File = cfg.LogFile
	fc.Logging.Verbose = cfg.Verbose
	return fc
}

func fromFile(cfg *Config, fc *fileConfig) error {
	scratch, err := expandPath(fc.Paths.ScratchDir)
	if err != nil {
		return err
	}
	logFile, err := expandPath(fc.Logging.File)
	if err != nil {
		return err
	}
	cfg.ScratchDir = scratch
	cfg.FFmpegBin = strings.TrimSpace(fc.Tools.FFmpeg)
	cfg.FFprobeBin = strings.TrimSpace(fc.Tools.FFprobe)
	cfg.DensityMiBPerSec = fc.Classify.DensityMiBPerSec
	cfg.SkipUnprobeable = fc.Classify.SkipUnprobeable
	cfg.Encoders = fc.Encode.Encoders
	cfg.X265CRF = fc.Encode.X265CRF
	cfg.VaapiDevice = strings.TrimSpace(fc.Encode.VaapiDevice)
	cfg.MaxRatio = fc.Encode.MaxRatio
	cfg.MinSavingsMiB = fc.Encode.MinSavingsMiB
	cfg.ColorMode = ColorMode(strings.ToLower(strings.TrimSpace(fc.Logging.Color)))
	cfg.LogFile = logFile
	cfg.Verbose = fc.Logging.Verbose
	return nil
}

// CreateSample writes a sample configuration file to path. It refuses to
// overwrite an existing file.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
