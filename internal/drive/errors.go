package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/teemow/handoutbot/internal/google"
)

// Kind classifies a failed Drive operation.
type Kind int

const (
	// KindTransient failures may succeed when retried.
	KindTransient Kind = iota + 1
	// KindConfiguration failures need operator action: credentials,
	// permissions or a missing resource.
	KindConfiguration
	// KindQuery means Drive rejected the query itself.
	KindQuery
	// KindCanceled means the caller gave up.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindConfiguration:
		return "configuration"
	case KindQuery:
		return "query"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("drive %s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsTransient reports whether err is a Drive failure worth retrying.
func IsTransient(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTransient
}

// rateLimitReasons are the 403 reasons Drive uses for throttling.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":        true,
	"userRateLimitExceeded":    true,
	"sharingRateLimitExceeded": true,
}

func classify(op string, err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Kind: classifyKind(err), Op: op, Err: err}
}

func classifyKind(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	if errors.Is(err, google.ErrConsentRequired) || errors.Is(err, google.ErrClientSecret) || errors.Is(err, google.ErrConsentTimeout) {
		return KindConfiguration
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return KindTransient
		}
		return KindConfiguration
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return KindTransient
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindTransient
	}
	return KindQuery
}

func classifyStatus(apiErr *googleapi.Error) Kind {
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return KindTransient
	case apiErr.Code >= http.StatusInternalServerError:
		return KindTransient
	case apiErr.Code == http.StatusForbidden:
		for _, item := range apiErr.Errors {
			if rateLimitReasons[item.Reason] {
				return KindTransient
			}
		}
		return KindConfiguration
	case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusNotFound:
		return KindConfiguration
	default:
		return KindQuery
	}
}
