// Package logging provides structured logging utilities for handoutbot.
//
// This package centralizes logging patterns so that the bot, the Drive client
// and the credential manager emit consistent, structured records through the
// standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "handout.search")
//	logger.Info("search finished",
//	    logging.Chat(chatID),
//	    logging.Count(len(files)),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
//   - Chat identifiers are hashed so log lines can be correlated without
//     exposing who used the bot
//   - Tokens are never logged directly, use SanitizeToken
package logging
