package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// PrintLogger is the Printf/Println style interface third-party libraries
// expect, such as the Telegram bot API client.
type PrintLogger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

// SlogAdapter adapts an slog.Logger to the PrintLogger interface so that
// library output ends up in the same structured stream as ours.
type SlogAdapter struct {
	logger  *slog.Logger
	level   slog.Level
	secrets []string
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used. Records are emitted at level.
func NewSlogAdapter(logger *slog.Logger, level slog.Level) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger, level: level}
}

// Println logs the operands joined by spaces.
func (a *SlogAdapter) Println(v ...interface{}) {
	a.log(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Printf logs a formatted message.
func (a *SlogAdapter) Printf(format string, v ...interface{}) {
	a.log(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

// Redact masks secrets in every message logged through the adapter.
// The Telegram client prints request URLs, which embed the bot token.
func (a *SlogAdapter) Redact(secrets ...string) *SlogAdapter {
	a.secrets = append(a.secrets, secrets...)
	return a
}

func (a *SlogAdapter) log(msg string) {
	for _, secret := range a.secrets {
		msg = RedactSecret(msg, secret)
	}
	a.logger.Log(context.Background(), a.level, msg)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
