package logging

import (
	"errors"
	"net/url"
	"strings"
)

// RedactSecret replaces every occurrence of secret in s with its masked form.
func RedactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, SanitizeToken(secret))
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }

// RedactError returns err with secret masked in its message. Errors that do
// not mention secret are returned unchanged. When the secret sits in the URL
// of a *url.Error, the transport error underneath stays reachable through
// errors.Is and errors.As.
func RedactError(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	var cause error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = RedactError(urlErr.Err, secret)
	}
	return &redactedError{msg: RedactSecret(err.Error(), secret), cause: cause}
}
