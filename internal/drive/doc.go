// Package drive runs handout name searches against the Google Drive v3 API.
//
// Only file ids and names are requested. Search terms are escaped before they
// are embedded in a Drive query, result pages are followed up to a limit, and
// transient failures (rate limits, server errors, network errors) are retried
// with exponential backoff. Every failure is reported as an *Error carrying a
// Kind so callers can tell a flaky backend from a broken configuration.
package drive
