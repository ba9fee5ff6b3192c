package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/hevcshrink/internal/check"
	"github.com/backmassage/hevcshrink/internal/config"
	"github.com/backmassage/hevcshrink/internal/display"
	"github.com/backmassage/hevcshrink/internal/logging"
	"github.com/backmassage/hevcshrink/internal/pipeline"
	"github.com/backmassage/hevcshrink/internal/runlock"
)

// cliContext carries the shared flag values and output streams to every
// command.
type cliContext struct {
	flags  config.Flags
	stdout io.Writer
	stderr io.Writer
}

// setup resolves the effective config for cmd and builds the logger. The
// log file is opened only when withFile is set; otherwise the caller opens
// it later with OpenFile. The caller must Close the logger.
func (c *cliContext) setup(cmd *cobra.Command, root string, withFile bool) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Resolve(cmd.Flags(), &c.flags, root)
	if err != nil {
		return nil, nil, err
	}
	log := logging.NewConsoleLogger(cfg)
	log.SetOutput(c.stdout, c.stderr)
	if withFile {
		if err := log.OpenFile(cfg.LogFile); err != nil {
			return nil, nil, err
		}
	}
	log.Debug(cfg.Verbose, "Config file: %s", cfg.ConfigFile)
	return cfg, log, nil
}

// signalContext cancels on SIGINT/SIGTERM so the pipeline can stop the
// running encode without touching the original.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cliContext{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "hevcshrink [path]",
		Short: "Shrink video files in place by re-encoding them to HEVC",
		Long: "hevcshrink walks path (default: the current directory) and re-encodes\n" +
			"every .mp4, .avi, .mpeg, .mpg and .mov file that is not already\n" +
			"efficiently compressed. A result replaces the original only when it\n" +
			"is clearly smaller.",
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.compress(cmd, firstArg(args))
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("hevcshrink {{.Version}}\n")

	config.BindFlags(rootCmd.PersistentFlags(), &c.flags)
	rootCmd.Flags().BoolP("version", "V", false, "Print version and exit")

	rootCmd.AddCommand(newScanCommand(c))
	rootCmd.AddCommand(newCheckCommand(c))
	rootCmd.AddCommand(newConfigCommand(c))
	return rootCmd
}

// compress is the default command: check deps, lock the tree, run.
func (c *cliContext) compress(cmd *cobra.Command, root string) error {
	// Phase 1: config and logger.
	cfg, log, err := c.setup(cmd, root, false)
	if err != nil {
		return err
	}
	defer log.Close()
	display.PrintBanner(c.stdout)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	// Phase 2: ffmpeg must run before anything is written.
	if err := check.CheckDeps(ctx, cfg, log); err != nil {
		return err
	}
	if err := log.OpenFile(cfg.LogFile); err != nil {
		return err
	}

	// Phase 3: one run per tree.
	lock, err := runlock.Acquire("", cfg.RootPath)
	if err != nil {
		return err
	}
	defer lock.Release()
	log.Debug(cfg.Verbose, "Run lock: %s", lock.Path())

	// Phase 4: discover → classify → encode → judge → replace.
	stats, err := pipeline.Run(ctx, cfg, log)
	if err != nil {
		return err
	}
	if stats.Interrupted {
		log.Warn("Stopped before finishing; remaining files were not touched")
		return context.Canceled
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
