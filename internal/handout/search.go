package handout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/handoutbot/internal/drive"
	"github.com/teemow/handoutbot/internal/instrumentation"
	"github.com/teemow/handoutbot/internal/logging"
)

// User-visible search texts.
const (
	TextSearching     = "Searching..."
	TextNoResults     = "No Results For The Particular Search Term. Please Try Again !"
	TextFoundSingle   = "Found Your File! Uploading..."
	TextFileBelow     = "Please Find Your File Below :"
	TextFoundMultiple = "Found %d Results For Your Search :\n(click on any filename to copy and send it back to me to get the file)"
	TextUnavailable   = "Google Drive Is Not Responding Right Now. Please Try Again In A Few Minutes !"
	TextFailed        = "Something Went Wrong While Searching. Please Try Again Later !"
)

// Finder looks up files whose name contains a fragment.
type Finder interface {
	FindByName(ctx context.Context, fragment string) ([]drive.FileInfo, error)
}

// SearcherConfig configures a Searcher.
type SearcherConfig struct {
	Finder Finder

	// Semesters are listed in order for multi-result searches
	// (default: RecentSemesters(time.Now(), DefaultSemesterCount)).
	Semesters []Semester

	// ChunkSize caps the entries per listing message (default: DefaultChunkSize).
	ChunkSize int

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Searcher answers free-text search requests.
type Searcher struct {
	finder    Finder
	semesters []Semester
	chunkSize int
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(cfg SearcherConfig) (*Searcher, error) {
	if cfg.Finder == nil {
		return nil, errors.New("finder is required")
	}
	s := &Searcher{
		finder:    cfg.Finder,
		semesters: cfg.Semesters,
		chunkSize: cfg.ChunkSize,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if len(s.semesters) == 0 {
		s.semesters = RecentSemesters(time.Now(), DefaultSemesterCount)
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultChunkSize
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Semesters returns the semesters listed for multi-result searches.
func (s *Searcher) Semesters() []Semester {
	return append([]Semester(nil), s.semesters...)
}

// HandleSearch searches for term and answers on conv.
//
// A placeholder is sent first and edited to the outcome. A single match is
// delivered as a document. Several matches are counted and then listed per
// semester, skipping semesters without matches. When the lookup fails the
// user gets a failure text and the error is returned.
func (s *Searcher) HandleSearch(ctx context.Context, term string, conv Conversation) error {
	placeholder, err := conv.Reply(ctx, TextSearching)
	if err != nil {
		return fmt.Errorf("failed to send placeholder: %w", err)
	}

	term = strings.TrimSpace(term)
	logger := s.logger.With(logging.Term(term))

	var files []drive.FileInfo
	if term != "" {
		files, err = s.finder.FindByName(ctx, term)
		if err != nil {
			return s.fail(ctx, logger, err, func(text string) error {
				return conv.Edit(ctx, placeholder, text)
			})
		}
	}

	switch len(files) {
	case 0:
		s.metrics.RecordSearchResult(ctx, instrumentation.SearchOutcomeNone)
		logger.InfoContext(ctx, "search found nothing")
		return conv.Edit(ctx, placeholder, TextNoResults)

	case 1:
		s.metrics.RecordSearchResult(ctx, instrumentation.SearchOutcomeSingle)
		logger.InfoContext(ctx, "search found one file", "file_id", files[0].ID)
		if err := conv.Edit(ctx, placeholder, TextFoundSingle); err != nil {
			return err
		}
		if err := conv.ReplyDocument(ctx, drive.DownloadURL(files[0].ID)); err != nil {
			return fmt.Errorf("failed to send document: %w", err)
		}
		return conv.Edit(ctx, placeholder, TextFileBelow)
	}

	logger.InfoContext(ctx, "search found several files", logging.Count(len(files)))
	if err := conv.Edit(ctx, placeholder, fmt.Sprintf(TextFoundMultiple, len(files))); err != nil {
		return err
	}

	for _, sem := range s.semesters {
		matches, err := s.finder.FindByName(ctx, term+" "+sem.Suffix)
		if err != nil {
			return s.fail(ctx, logger, err, func(text string) error {
				_, err := conv.Reply(ctx, text)
				return err
			})
		}
		if len(matches) == 0 {
			continue
		}

		if _, err := conv.Reply(ctx, sem.Header()); err != nil {
			return err
		}
		for _, listing := range Chunk(fileNames(matches), s.chunkSize) {
			if err := conv.ReplyListing(ctx, listing); err != nil {
				return err
			}
		}
		logger.DebugContext(ctx, "listed semester", "semester", sem.Suffix, logging.Count(len(matches)))
	}

	s.metrics.RecordSearchResult(ctx, instrumentation.SearchOutcomeMultiple)
	return nil
}

// fail reports err to the user through notify and returns it wrapped.
func (s *Searcher) fail(ctx context.Context, logger *slog.Logger, err error, notify func(string) error) error {
	s.metrics.RecordSearchResult(ctx, instrumentation.SearchOutcomeError)

	text := TextFailed
	if drive.IsTransient(err) {
		text = TextUnavailable
	}
	if kind, ok := drive.KindOf(err); ok && kind == drive.KindCanceled {
		logger.DebugContext(ctx, "search canceled")
		return err
	}

	logger.ErrorContext(ctx, "search failed", logging.Err(err))
	if nerr := notify(text); nerr != nil {
		logger.WarnContext(ctx, "failed to report search failure", logging.Err(nerr))
	}
	return fmt.Errorf("search failed: %w", err)
}

func fileNames(files []drive.FileInfo) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
