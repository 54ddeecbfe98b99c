package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/handoutbot/internal/google"
	"github.com/teemow/handoutbot/internal/handout"
)

func newSearchCmd() *cobra.Command {
	cfg := &searchConfig{}

	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Search the handout drive from the command line",
		Long: `Search the handout drive and print the messages the bot would send.

All arguments are joined into one search term, e.g.

  handoutbot search CS F111`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.loadEnv(cmd); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := slog.Default()

			provider, err := cfg.tokenProvider(logger, nil, false)
			if err != nil {
				return err
			}
			searcher, err := cfg.searcher(ctx, provider, nil, logger)
			if err != nil {
				return err
			}

			transcript := handout.NewTranscript()
			searchErr := searcher.HandleSearch(ctx, strings.Join(args, " "), transcript)
			if out := transcript.String(); out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			if errors.Is(searchErr, google.ErrConsentRequired) {
				fmt.Fprintln(cmd.ErrOrStderr(), google.GetAuthenticationErrorMessage(cfg.tokenFile))
			}
			return searchErr
		},
	}

	cfg.addFlags(cmd)
	return cmd
}
