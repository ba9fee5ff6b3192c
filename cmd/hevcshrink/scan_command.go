package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/hevcshrink/internal/pipeline"
)

func newScanCommand(c *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [path]",
		Short: "Report which files would be compressed, without encoding",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := c.setup(cmd, firstArg(args), true)
			if err != nil {
				return err
			}
			defer log.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			_, err = pipeline.Scan(ctx, cfg, log, c.stdout)
			return err
		},
	}
}
