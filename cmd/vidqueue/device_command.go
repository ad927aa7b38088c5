package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidqueue/internal/device"
)

func newDeviceIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "device-id",
		Short:       "Print this machine's device id",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), device.ID())
			return nil
		},
	}
}
