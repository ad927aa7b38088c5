package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidqueue/internal/auth"
	"vidqueue/internal/credentials"
	"vidqueue/internal/device"
)

func newHashPasswordCommand() *cobra.Command {
	var username string
	var deviceID string
	var expiry string

	cmd := &cobra.Command{
		Use:         "hash-password <password>",
		Short:       "Print a credential line for the user store",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			user := strings.TrimSpace(username)
			if user == "" {
				return errors.New("--user is required")
			}
			if strings.Contains(user, ",") {
				return errors.New("username must not contain a comma")
			}
			expiry = strings.TrimSpace(expiry)
			if expiry != credentials.LifetimeExpiry {
				if _, err := auth.ParseExpiry(expiry); err != nil {
					return fmt.Errorf("expiry must be %s, YYYY-MM-DD or \"YYYY-MM-DD HH:MM:SS\": %w", credentials.LifetimeExpiry, err)
				}
			}
			id := strings.TrimSpace(deviceID)
			if id == "" {
				id = device.ID()
			}
			fmt.Fprintln(cmd.OutOrStdout(), credentials.FormatRecord(credentials.Record{
				DeviceID:     id,
				Username:     user,
				PasswordHash: auth.HashPassword(args[0]),
				Expiry:       expiry,
			}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username for the record")
	cmd.Flags().StringVar(&deviceID, "device", "", "Device id the record is bound to (default: this machine)")
	cmd.Flags().StringVar(&expiry, "expiry", credentials.LifetimeExpiry, "Expiry date or LIFETIME")
	return cmd
}
