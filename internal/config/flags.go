package config

// This file binds CLI flags. Flags are captured into Flags first and applied
// after the config file is loaded, so file values hold unless a flag is set.

import (
	"github.com/spf13/pflag"
)

// Flags holds the raw CLI flag values shared by every command.
type Flags struct {
	ConfigPath string
	LogFile    string
	Verbose    bool
	forceColor bool
	noColor    bool
}

// BindFlags registers the persistent flags on fs.
func BindFlags(fs *pflag.FlagSet, f *Flags) {
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Config file (default ~/.config/hevcshrink/config.toml)")
	fs.StringVarP(&f.LogFile, "log", "l", "", "Append logs to file")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVar(&f.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored logs")
}

// Apply copies flags that were set on the command line into cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("log") {
		cfg.LogFile = f.LogFile
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.Verbose
	}
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// Resolve builds the effective Config: defaults, then the config file, then
// flags, then the positional root path (empty keeps the default ".").
func Resolve(fs *pflag.FlagSet, f *Flags, root string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := Load(&cfg, f.ConfigPath); err != nil {
		return nil, err
	}
	f.Apply(fs, &cfg)
	if root != "" {
		cfg.RootPath = NormalizeDirArg(root)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
