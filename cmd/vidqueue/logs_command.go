package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vidqueue/internal/logging"
	"vidqueue/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var raw bool
	var lines int
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display server logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			runCtx := cmd.Context()

			offset := int64(-1)
			if lines <= 0 {
				offset = 0
			}
			limit := lines
			printed := false

			for {
				result, err := logs.Tail(runCtx, path, logs.TailOptions{
					Offset: offset,
					Limit:  limit,
					Follow: follow,
					Wait:   time.Second,
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return fmt.Errorf("tail logs: %w", err)
				}
				out := result.Lines
				if !raw {
					out = logs.Render(out, filter)
				}
				for _, line := range out {
					fmt.Fprintln(cmd.OutOrStdout(), line)
					printed = true
				}
				offset = result.Offset
				limit = 0
				if !follow {
					if !printed {
						fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					}
					return nil
				}
				select {
				case <-runCtx.Done():
					return nil
				default:
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	cmd.Flags().StringVar(&filter.JobID, "job", "", "Only show records for this job id (prefix match)")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}
