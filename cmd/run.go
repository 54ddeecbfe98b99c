package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/handoutbot/internal/bot"
	"github.com/teemow/handoutbot/internal/logging"
	"github.com/teemow/handoutbot/internal/server"
)

// DefaultPollTimeout is the long polling timeout passed to getUpdates, in seconds.
const DefaultPollTimeout = 60

type runConfig struct {
	searchConfig

	telegramToken  string
	pollTimeout    int
	metricsEnabled bool
	metricsAddr    string
}

func newRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot with long polling.

Every text message is treated as a search term and answered with the matching
handout, or with the candidates grouped by semester. /start and /help are
answered with fixed texts.

On first start without a cached Google token the consent URL is printed and the
bot waits for the browser to complete authorization.

Metrics and health probes (/metrics, /healthz, /readyz) are served on
--metrics-addr when --metrics-enabled is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.loadEnv(cmd); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBot(ctx, cfg, slog.Default())
		},
	}

	cfg.addFlags(cmd)
	cmd.Flags().StringVar(&cfg.telegramToken, "telegram-token", "", "Telegram bot API token. Can also use TELEGRAM_BOT_TOKEN env var.")
	cmd.Flags().IntVar(&cfg.pollTimeout, "poll-timeout", DefaultPollTimeout, "Long polling timeout in seconds")
	cmd.Flags().BoolVar(&cfg.metricsEnabled, "metrics-enabled", false, "Serve Prometheus metrics and health probes. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func (c *runConfig) loadEnv(cmd *cobra.Command) error {
	if err := c.searchConfig.loadEnv(cmd); err != nil {
		return err
	}
	envString(cmd, "telegram-token", "TELEGRAM_BOT_TOKEN", &c.telegramToken)
	envString(cmd, "metrics-addr", "METRICS_ADDR", &c.metricsAddr)
	return envBool(cmd, "metrics-enabled", "METRICS_ENABLED", &c.metricsEnabled)
}

func (c *runConfig) validate() error {
	if c.telegramToken == "" {
		return fmt.Errorf("telegram token is required: use --telegram-token or TELEGRAM_BOT_TOKEN")
	}
	if c.pollTimeout < 0 {
		return fmt.Errorf("--poll-timeout must not be negative, got %d", c.pollTimeout)
	}
	return c.searchConfig.validate()
}

func runBot(ctx context.Context, cfg *runConfig, logger *slog.Logger) error {
	telegramLogger := logging.NewSlogAdapter(logger, slog.LevelDebug).Redact(cfg.telegramToken)
	if err := tgbotapi.SetLogger(telegramLogger); err != nil {
		return fmt.Errorf("failed to set telegram logger: %w", err)
	}
	api, err := tgbotapi.NewBotAPI(cfg.telegramToken)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", logging.RedactError(err, cfg.telegramToken))
	}
	api.Debug = debugMode
	logger.Info("authorized on telegram", "bot", api.Self.UserName)

	instrConfig := instrumentationConfig(logger)
	instrConfig.BotUsername = api.Self.UserName
	instr, err := newInstrumentation(ctx, instrConfig)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := instr.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down instrumentation", logging.Err(err))
		}
	}()
	metrics := instr.Metrics()

	provider, err := cfg.tokenProvider(logger, metrics, true)
	if err != nil {
		return err
	}
	// Authorize before polling so the first user does not wait on consent.
	if _, err := provider.Token(ctx); err != nil {
		return fmt.Errorf("failed to obtain Google token: %w", err)
	}

	searcher, err := cfg.searcher(ctx, provider, metrics, logger)
	if err != nil {
		return err
	}

	dispatcher, err := bot.NewDispatcher(bot.DispatcherConfig{
		Sender:   api,
		Searcher: searcher,
		Token:    cfg.telegramToken,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	health := server.NewHealthChecker()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if cfg.metricsEnabled {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.metricsAddr,
			InstrumentationProvider: instr,
			Health:                  health,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		g.Go(func() error {
			return metricsServer.Run(gctx)
		})
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = cfg.pollTimeout
	updates := api.GetUpdatesChan(updateConfig)

	g.Go(func() error {
		<-gctx.Done()
		health.BeginShutdown()
		api.StopReceivingUpdates()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return dispatcher.Run(gctx, updates)
	})

	health.SetReady(true)
	logger.Info("bot is running",
		"semesters", len(searcher.Semesters()),
		"poll_timeout", time.Duration(cfg.pollTimeout)*time.Second)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("bot stopped")
	return nil
}
