package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidqueue/internal/api"
	"vidqueue/internal/download"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var quality string
	var manual string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start downloading the saved link list on the running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.StartDownload(cmd.Context(), api.StartDownloadRequest{
				Mode:      strings.TrimSpace(mode),
				Quality:   strings.TrimSpace(quality),
				ManualFmt: strings.TrimSpace(manual),
			})
			if errors.Is(err, api.ErrBusy) {
				return fmt.Errorf("a download run is already in progress")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started job %s\n", resp.JobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", download.ModeVideo, "Download mode (video or audio)")
	cmd.Flags().StringVar(&quality, "quality", "best", "Quality tier: "+strings.Join(download.Qualities(), ", "))
	cmd.Flags().StringVar(&manual, "format", "", "yt-dlp format selector used with --quality manual")
	return cmd
}
