// Package cmd implements the command-line interface for handoutbot.
//
// This package provides the following commands:
//   - run: Poll Telegram and answer handout searches
//   - auth: Authorize Google Drive access and cache the token
//   - search: Run a single search and print the replies
//   - mcp: Serve the handout tools over MCP stdio
//   - generate-docs: Generate markdown documentation for the MCP tools
//   - version: Display version information
//
// Flags fall back to environment variables, see the flag help for names.
package cmd
