package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/teemow/handoutbot/internal/google"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "deadline", err: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), want: KindCanceled},
		{name: "consent required", err: fmt.Errorf("token: %w", google.ErrConsentRequired), want: KindConfiguration},
		{name: "server error", err: &googleapi.Error{Code: http.StatusBadGateway}, want: KindTransient},
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, want: KindTransient},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest}, want: KindQuery},
		{name: "unknown", err: errors.New("boom"), want: KindQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyKind(tt.err))
		})
	}
}

func TestError(t *testing.T) {
	inner := errors.New("backend down")
	err := fmt.Errorf("search: %w", &Error{Kind: KindTransient, Op: "files.list", Err: inner})

	assert.ErrorIs(t, err, inner)
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "transient")

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsTransient(nil))
	assert.Equal(t, "unknown", Kind(0).String())
}
