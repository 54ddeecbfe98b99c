package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type fakeFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fakePage struct {
	Files         []fakeFile `json:"files"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": "fake failure",
			"errors":  []map[string]string{{"reason": reason, "message": "fake failure"}},
		},
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := drive.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	if cfg.RetryInitialInterval == 0 {
		cfg.RetryInitialInterval = time.Millisecond
	}
	return NewClientWithService(service, cfg)
}

func TestFindByName_FollowsPages(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "name contains 'CS F111' and trashed = false", q.Get("q"))
		assert.Equal(t, "drive", q.Get("spaces"))
		assert.Equal(t, listFields, q.Get("fields"))

		switch q.Get("pageToken") {
		case "":
			writeJSON(w, http.StatusOK, fakePage{
				Files:         []fakeFile{{"1", "CS F111 SEM1 (2020-21)"}, {"2", "CS F111 SEM2 (2019-20)"}},
				NextPageToken: "page-2",
			})
		case "page-2":
			writeJSON(w, http.StatusOK, fakePage{Files: []fakeFile{{"3", "CS F111 SEM1 (2019-20)"}}})
		default:
			t.Errorf("unexpected page token %q", q.Get("pageToken"))
		}
	}, Config{})

	files, err := client.FindByName(context.Background(), "CS F111")
	require.NoError(t, err)
	assert.Equal(t, []FileInfo{
		{ID: "1", Name: "CS F111 SEM1 (2020-21)"},
		{ID: "2", Name: "CS F111 SEM2 (2019-20)"},
		{ID: "3", Name: "CS F111 SEM1 (2019-20)"},
	}, files)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFindByName_NoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fakePage{})
	}, Config{})

	files, err := client.FindByName(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestFindByName_EscapesQuotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `name contains 'O\'Reilly \\ Co' and trashed = false`, r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, fakePage{Files: []fakeFile{{"9", "O'Reilly \\ Co"}}})
	}, Config{})

	files, err := client.FindByName(context.Background(), `O'Reilly \ Co`)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "9", files[0].ID)
}

func TestFindByName_MaxPages(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		writeJSON(w, http.StatusOK, fakePage{
			Files:         []fakeFile{{fmt.Sprint(n), fmt.Sprintf("file %d", n)}},
			NextPageToken: fmt.Sprintf("page-%d", n+1),
		})
	}, Config{MaxPages: 2})

	files, err := client.FindByName(context.Background(), "file")
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFindByName_RetriesTransientFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason string
	}{
		{name: "server error", status: http.StatusServiceUnavailable, reason: "backendError"},
		{name: "too many requests", status: http.StatusTooManyRequests, reason: "rateLimitExceeded"},
		{name: "forbidden rate limit", status: http.StatusForbidden, reason: "userRateLimitExceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					writeAPIError(w, tt.status, tt.reason)
					return
				}
				writeJSON(w, http.StatusOK, fakePage{Files: []fakeFile{{"1", "handout"}}})
			}, Config{})

			files, err := client.FindByName(context.Background(), "handout")
			require.NoError(t, err)
			assert.Len(t, files, 1)
			assert.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestFindByName_GivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeAPIError(w, http.StatusInternalServerError, "backendError")
	}, Config{MaxTries: 3})

	_, err := client.FindByName(context.Background(), "handout")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFindByName_PermanentFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		reason   string
		wantKind Kind
	}{
		{name: "bad query", status: http.StatusBadRequest, reason: "invalid", wantKind: KindQuery},
		{name: "unauthorized", status: http.StatusUnauthorized, reason: "authError", wantKind: KindConfiguration},
		{name: "forbidden", status: http.StatusForbidden, reason: "insufficientPermissions", wantKind: KindConfiguration},
		{name: "not found", status: http.StatusNotFound, reason: "notFound", wantKind: KindConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeAPIError(w, tt.status, tt.reason)
			}, Config{})

			_, err := client.FindByName(context.Background(), "handout")
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, kind)
			assert.False(t, IsTransient(err))
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestFindByName_Canceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fakePage{})
	}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FindByName(ctx, "handout")
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindCanceled, kind)
}
