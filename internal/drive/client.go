package drive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teemow/handoutbot/internal/google"
	"github.com/teemow/handoutbot/internal/instrumentation"
	"github.com/teemow/handoutbot/internal/logging"
)

const (
	opFilesList = "files.list"

	listFields = "nextPageToken, files(id, name)"

	// DefaultMaxTries is the number of attempts per page request.
	DefaultMaxTries = 3
	// DefaultMaxPages caps how many result pages one search follows.
	DefaultMaxPages = 20
	// DefaultPageSize is the page size requested from Drive.
	DefaultPageSize = 100
)

// Config tunes a Client. Zero values select the defaults.
type Config struct {
	MaxTries uint
	MaxPages int
	PageSize int64

	// RetryInitialInterval is the first backoff delay (default 500ms).
	RetryInitialInterval time.Duration

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service

	maxTries        uint
	maxPages        int
	pageSize        int64
	initialInterval time.Duration

	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewClient creates a Drive client authorized by provider.
func NewClient(ctx context.Context, provider google.TokenProvider, cfg Config) (*Client, error) {
	httpClient := google.NewHTTPClient(ctx, provider)

	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return NewClientWithService(service, cfg), nil
}

// NewClientWithService wraps an existing Drive service.
func NewClientWithService(service *drive.Service, cfg Config) *Client {
	c := &Client{
		service:         service,
		maxTries:        cfg.MaxTries,
		maxPages:        cfg.MaxPages,
		pageSize:        cfg.PageSize,
		initialInterval: cfg.RetryInitialInterval,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
	}
	if c.maxTries == 0 {
		c.maxTries = DefaultMaxTries
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = logging.WithService(c.logger, instrumentation.ServiceDrive)
	return c
}

// FindByName returns the non-trashed files whose name contains fragment, in
// the order Drive returns them. An empty slice means nothing matched.
func (c *Client) FindByName(ctx context.Context, fragment string) ([]FileInfo, error) {
	query := NameContainsQuery(fragment)

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceDrive, opFilesList)
	defer span.End()

	start := time.Now()
	files, err := c.listAll(ctx, query)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceDrive, opFilesList, status, time.Since(start))

	c.logger.DebugContext(ctx, "drive search finished",
		logging.Operation(opFilesList),
		logging.Term(fragment),
		logging.Count(len(files)),
		logging.Status(status),
		logging.Err(err))

	return files, err
}

func (c *Client) listAll(ctx context.Context, query string) ([]FileInfo, error) {
	files := []FileInfo{}
	pageToken := ""
	for page := 1; ; page++ {
		list, err := c.listPage(ctx, query, pageToken)
		if err != nil {
			return nil, err
		}
		for _, f := range list.Files {
			files = append(files, convertToFileInfo(f))
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			return files, nil
		}
		if page >= c.maxPages {
			c.logger.WarnContext(ctx, "search result truncated",
				logging.Operation(opFilesList),
				"max_pages", c.maxPages,
				logging.Count(len(files)))
			return files, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, query, pageToken string) (*drive.FileList, error) {
	operation := func() (*drive.FileList, error) {
		call := c.service.Files.List().
			Context(ctx).
			Q(query).
			Spaces("drive").
			PageSize(c.pageSize).
			Fields(listFields)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			de := classify(opFilesList, err)
			if de.Kind != KindTransient {
				return nil, backoff.Permanent(de)
			}
			return nil, de
		}
		return list, nil
	}

	list, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.metrics.RecordDriveRetry(ctx, opFilesList)
			c.logger.WarnContext(ctx, "retrying drive request",
				logging.Operation(opFilesList),
				"backoff", next,
				logging.Err(err))
		}),
	)
	if err != nil {
		return nil, classify(opFilesList, err)
	}
	return list, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.initialInterval > 0 {
		b.InitialInterval = c.initialInterval
		b.MaxInterval = 10 * c.initialInterval
	}
	return b
}
