package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/teemow/handoutbot/internal/handout"
	"github.com/teemow/handoutbot/internal/instrumentation"
	"github.com/teemow/handoutbot/internal/logging"
)

// SearchHandler answers a search term on a conversation.
type SearchHandler interface {
	HandleSearch(ctx context.Context, term string, conv handout.Conversation) error
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Sender   Sender
	Searcher SearchHandler
	// Token is masked in errors returned by Sender before they are logged.
	Token    string
	Metrics  *instrumentation.Metrics
	Logger   *slog.Logger
}

// Dispatcher routes Telegram updates to the handout handlers.
type Dispatcher struct {
	sender   Sender
	searcher SearchHandler
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. Sender and Searcher are required.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Sender == nil {
		return nil, errors.New("sender is required")
	}
	if cfg.Searcher == nil {
		return nil, errors.New("searcher is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sender := cfg.Sender
	if cfg.Token != "" {
		sender = &redactingSender{sender: sender, token: cfg.Token}
	}
	return &Dispatcher{
		sender:   sender,
		searcher: cfg.Searcher,
		metrics:  cfg.Metrics,
		logger:   logger.With("component", "dispatcher"),
	}, nil
}

// Run handles updates sequentially until ctx is done or updates is closed.
// A failing update is logged and does not stop the loop.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	d.logger.InfoContext(ctx, "dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "dispatcher stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				d.logger.InfoContext(ctx, "update channel closed")
				return nil
			}
			d.Handle(ctx, update)
		}
	}
}

// Handle processes a single update and returns the route it took.
func (d *Dispatcher) Handle(ctx context.Context, update tgbotapi.Update) (kind string) {
	requestID := uuid.NewString()
	kind = classifyUpdate(update)
	if kind == instrumentation.UpdateKindIgnored {
		d.metrics.RecordUpdate(ctx, kind, instrumentation.StatusSuccess, 0)
		return kind
	}

	msg := update.Message
	logger := logging.WithRequestID(d.logger, requestID).With(
		logging.Operation(kind),
		logging.Chat(msg.Chat.ID),
	)

	ctx, span := instrumentation.StartUpdateSpan(ctx, kind, requestID)
	defer span.End()

	start := time.Now()
	err := d.route(ctx, kind, msg)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		logger.ErrorContext(ctx, "update failed", logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
		logger.DebugContext(ctx, "update handled", "duration", time.Since(start))
	}
	d.metrics.RecordUpdate(ctx, kind, status, time.Since(start))
	return kind
}

func (d *Dispatcher) route(ctx context.Context, kind string, msg *tgbotapi.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s handler: %v", kind, r)
		}
	}()

	conv := newChatConversation(d.sender, msg.Chat.ID, d.metrics)
	switch kind {
	case instrumentation.UpdateKindStart:
		return handout.HandleStart(ctx, conv)
	case instrumentation.UpdateKindHelp:
		return handout.HandleHelp(ctx, conv)
	default:
		return d.searcher.HandleSearch(ctx, msg.Text, conv)
	}
}

func classifyUpdate(update tgbotapi.Update) string {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return instrumentation.UpdateKindIgnored
	}
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return instrumentation.UpdateKindStart
		case "help":
			return instrumentation.UpdateKindHelp
		default:
			return instrumentation.UpdateKindIgnored
		}
	}
	if strings.TrimSpace(msg.Text) == "" {
		return instrumentation.UpdateKindIgnored
	}
	return instrumentation.UpdateKindSearch
}
