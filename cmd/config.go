package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/handoutbot/internal/drive"
	"github.com/teemow/handoutbot/internal/google"
	"github.com/teemow/handoutbot/internal/handout"
	"github.com/teemow/handoutbot/internal/instrumentation"
)

// searchConfig holds the settings shared by every command that searches Drive.
type searchConfig struct {
	credentialsFile string
	tokenFile       string
	semesters       []string
	semesterCount   int
	chunkSize       int
	retryMaxTries   int
	consentTimeout  time.Duration
}

func (c *searchConfig) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.credentialsFile, "credentials-file", "credentials.json", "Google OAuth client secret file. Can also use GOOGLE_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&c.tokenFile, "token-file", "token.json", "Cached Google OAuth token. Can also use GOOGLE_TOKEN_FILE env var.")
	cmd.Flags().StringSliceVar(&c.semesters, "semester", nil, "Semester suffix to list, newest first, e.g. 'SEM1 (2020-21)' (repeatable). Derived from the current date when unset. Can also use HANDOUT_SEMESTERS env var.")
	cmd.Flags().IntVar(&c.semesterCount, "semester-count", handout.DefaultSemesterCount, "Number of semesters to list when --semester is unset. Can also use HANDOUT_SEMESTER_COUNT env var.")
	cmd.Flags().IntVar(&c.chunkSize, "chunk-size", handout.DefaultChunkSize, "Maximum file names per listing message. Can also use HANDOUT_CHUNK_SIZE env var.")
	cmd.Flags().IntVar(&c.retryMaxTries, "retry-max-tries", drive.DefaultMaxTries, "Attempts per Drive request on transient failures. Can also use DRIVE_RETRY_MAX_TRIES env var.")
	cmd.Flags().DurationVar(&c.consentTimeout, "consent-timeout", google.DefaultConsentTimeout, "How long to wait for the browser during OAuth consent")
}

// loadEnv fills every flag the user did not set from its environment variable.
func (c *searchConfig) loadEnv(cmd *cobra.Command) error {
	envString(cmd, "credentials-file", "GOOGLE_CREDENTIALS_FILE", &c.credentialsFile)
	envString(cmd, "token-file", "GOOGLE_TOKEN_FILE", &c.tokenFile)
	envList(cmd, "semester", "HANDOUT_SEMESTERS", &c.semesters)
	if err := envInt(cmd, "semester-count", "HANDOUT_SEMESTER_COUNT", &c.semesterCount); err != nil {
		return err
	}
	if err := envInt(cmd, "chunk-size", "HANDOUT_CHUNK_SIZE", &c.chunkSize); err != nil {
		return err
	}
	return envInt(cmd, "retry-max-tries", "DRIVE_RETRY_MAX_TRIES", &c.retryMaxTries)
}

func (c *searchConfig) validate() error {
	if c.credentialsFile == "" {
		return fmt.Errorf("--credentials-file is required")
	}
	if c.tokenFile == "" {
		return fmt.Errorf("--token-file is required")
	}
	if c.semesterCount <= 0 {
		return fmt.Errorf("--semester-count must be positive, got %d", c.semesterCount)
	}
	if c.chunkSize <= 0 {
		return fmt.Errorf("--chunk-size must be positive, got %d", c.chunkSize)
	}
	if c.retryMaxTries <= 0 {
		return fmt.Errorf("--retry-max-tries must be positive, got %d", c.retryMaxTries)
	}
	return nil
}

func (c *searchConfig) resolveSemesters(now time.Time) []handout.Semester {
	if semesters := handout.ParseSemesters(c.semesters); len(semesters) > 0 {
		return semesters
	}
	return handout.RecentSemesters(now, c.semesterCount)
}

// tokenProvider builds the credential manager. With interactive set, a
// missing or revoked token triggers the browser consent flow.
func (c *searchConfig) tokenProvider(logger *slog.Logger, metrics *instrumentation.Metrics, interactive bool) (*google.FileTokenProvider, error) {
	oauthConfig, err := google.LoadClientConfig(c.credentialsFile)
	if err != nil {
		return nil, err
	}

	var authorizer google.Authorizer
	if interactive {
		flow := &google.ConsentFlow{
			Config:  oauthConfig,
			Timeout: c.consentTimeout,
			Logger:  logger,
		}
		authorizer = flow.Run
	}

	return google.NewFileTokenProvider(google.FileTokenProviderConfig{
		OAuthConfig: oauthConfig,
		Store:       google.NewTokenFile(c.tokenFile),
		Authorizer:  authorizer,
		Metrics:     metrics,
		Logger:      logger,
	})
}

func (c *searchConfig) searcher(ctx context.Context, provider google.TokenProvider, metrics *instrumentation.Metrics, logger *slog.Logger) (*handout.Searcher, error) {
	driveClient, err := drive.NewClient(ctx, provider, drive.Config{
		MaxTries: uint(c.retryMaxTries),
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return handout.NewSearcher(handout.SearcherConfig{
		Finder:    driveClient,
		Semesters: c.resolveSemesters(time.Now()),
		ChunkSize: c.chunkSize,
		Metrics:   metrics,
		Logger:    logger,
	})
}

func envString(cmd *cobra.Command, flag, env string, dst *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func envList(cmd *cobra.Command, flag, env string, dst *[]string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := parseCommaSeparatedList(os.Getenv(env)); len(v) > 0 {
		*dst = v
	}
}

func envInt(cmd *cobra.Command, flag, env string, dst *int) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	*dst = n
	return nil
}

func envBool(cmd *cobra.Command, flag, env string, dst *bool) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	*dst = b
	return nil
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// instrumentationConfig reads the OpenTelemetry settings from the environment.
func instrumentationConfig(logger *slog.Logger) instrumentation.Config {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Logger = logger
	return instrConfig
}

// newInstrumentation creates the OpenTelemetry provider.
func newInstrumentation(ctx context.Context, instrConfig instrumentation.Config) (*instrumentation.Provider, error) {
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}
