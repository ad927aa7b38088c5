package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vidqueue/internal/api"
	"vidqueue/internal/jobs"
)

const watchInterval = time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the running server's download job",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if watch {
				return watchStatus(cmd.Context(), client, out, watchInterval)
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(out, status, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the job with a progress bar until it finishes")
	return cmd
}

func printStatus(out io.Writer, status *api.StatusResponse, colorize bool) {
	for _, line := range renderSectionHeader("Download job", colorize) {
		fmt.Fprintln(out, line)
	}
	kind := jobStateKind(status.State, status.Failures)
	fmt.Fprintln(out, renderStatusLine("State", kind, status.State, colorize))
	fmt.Fprintln(out, renderStatusLine("Message", kind, status.Log, colorize))
	if status.JobID != "" {
		fmt.Fprintln(out, renderStatusLine("Job", statusInfo, status.JobID, colorize))
	}
	if status.Total > 0 {
		fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, fmt.Sprintf("%d/%d", status.Current, status.Total), colorize))
	}
	if status.Failures > 0 {
		fmt.Fprintln(out, renderStatusLine("Failures", statusWarn, fmt.Sprintf("%d", status.Failures), colorize))
	}
	if status.StartedAt != "" {
		fmt.Fprintln(out, renderStatusLine("Started", statusInfo, status.StartedAt, colorize))
	}
	if status.FinishedAt != "" {
		fmt.Fprintln(out, renderStatusLine("Finished", statusInfo, status.FinishedAt, colorize))
	}
}

// watchStatus polls the server and mirrors task progress onto a bar until the
// job leaves the running state.
func watchStatus(ctx context.Context, client *api.Client, out io.Writer, interval time.Duration) error {
	var bar *progressbar.ProgressBar
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}
		if status.State != jobs.StateRunning {
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(out)
			}
			printStatus(out, status, shouldColorize(out))
			return nil
		}
		if status.Total > 0 {
			if bar == nil {
				bar = progressbar.NewOptions(status.Total,
					progressbar.OptionSetWriter(out),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(30),
					progressbar.OptionSetPredictTime(false),
				)
			}
			bar.Describe(strings.TrimSpace(status.Log))
			_ = bar.Set(status.Current)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
