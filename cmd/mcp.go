package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/handoutbot/internal/instrumentation"
	"github.com/teemow/handoutbot/internal/server"
	"github.com/teemow/handoutbot/internal/tools/handout_tools"
)

func newMCPCmd() *cobra.Command {
	cfg := &searchConfig{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the handout search as MCP tools over stdio",
		Long: `Start an MCP (Model Context Protocol) server on stdin/stdout exposing
the handout search to AI assistants.

The server never opens a browser: run 'handoutbot auth' first so a Google token
is cached. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.loadEnv(cmd); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return runMCP(cmd.Context(), cfg, slog.Default())
		},
	}

	cfg.addFlags(cmd)
	return cmd
}

// mcpInstrumentationConfig keeps exporter output off stdout, which carries
// the MCP protocol.
func mcpInstrumentationConfig(logger *slog.Logger) instrumentation.Config {
	instrConfig := instrumentationConfig(logger)
	instrConfig.StdoutWriter = os.Stderr
	return instrConfig
}

func runMCP(ctx context.Context, cfg *searchConfig, logger *slog.Logger) error {
	instr, err := newInstrumentation(ctx, mcpInstrumentationConfig(logger))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		_ = instr.Shutdown(shutdownCtx)
	}()
	metrics := instr.Metrics()

	provider, err := cfg.tokenProvider(logger, metrics, false)
	if err != nil {
		return err
	}
	searcher, err := cfg.searcher(ctx, provider, metrics, logger)
	if err != nil {
		return err
	}

	mcpSrv := mcpserver.NewMCPServer("handoutbot", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := handout_tools.RegisterHandoutTools(mcpSrv, searcher, metrics); err != nil {
		return fmt.Errorf("failed to register handout tools: %w", err)
	}

	logger.Info("serving MCP over stdio", "semesters", len(searcher.Semesters()))
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
