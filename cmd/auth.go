package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cfg := &searchConfig{}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read access to Google Drive",
		Long: `Run the OAuth consent flow and cache the resulting token.

The command prints a Google consent URL and listens on a loopback port for the
redirect. Once access is granted the token is written to --token-file and is
refreshed automatically by the other commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.loadEnv(cmd); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			provider, err := cfg.tokenProvider(slog.Default(), nil, true)
			if err != nil {
				return err
			}
			if _, err := provider.Token(cmd.Context()); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Google Drive access authorized. Token saved to %s\n", cfg.tokenFile)
			return nil
		},
	}

	cfg.addFlags(cmd)
	return cmd
}
