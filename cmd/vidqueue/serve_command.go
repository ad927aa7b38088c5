package main

import (
	"github.com/spf13/cobra"

	"vidqueue/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var openBrowser bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				OpenBrowser: openBrowser,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the page in the default browser once listening")
	return cmd
}
