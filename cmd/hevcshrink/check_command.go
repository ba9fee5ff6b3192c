package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/hevcshrink/internal/check"
	"github.com/backmassage/hevcshrink/internal/display"
)

func newCheckCommand(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show ffmpeg, encoder and scratch directory diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := c.setup(cmd, "", true)
			if err != nil {
				return err
			}
			defer log.Close()
			display.PrintBanner(c.stdout)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			report, err := check.RunCheck(ctx, cfg, log)
			if len(report.Encoders) > 0 {
				fmt.Fprintln(c.stdout, encoderTable(report))
			}
			if report.ScratchFree > 0 {
				log.Info("Scratch space free: %s", display.FormatBytes(int64(report.ScratchFree)))
			}
			if cfg.VaapiDevice != "" && !report.VaapiDeviceSeen {
				log.Debug(cfg.Verbose, "VAAPI device %s not present", cfg.VaapiDevice)
			}
			return err
		},
	}
}

func encoderTable(r check.Report) string {
	rows := make([][]string, 0, len(r.Encoders))
	for _, st := range r.Encoders {
		rows = append(rows, []string{st.Name, yesNo(st.Listed), yesNo(st.Works), st.Detail})
	}
	return display.RenderTable(
		[]string{"Encoder", "Built in", "Works", "Detail"},
		rows,
		[]display.Align{display.AlignLeft, display.AlignLeft, display.AlignLeft, display.AlignLeft},
	)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
