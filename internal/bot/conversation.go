package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/teemow/handoutbot/internal/handout"
	"github.com/teemow/handoutbot/internal/instrumentation"
	"github.com/teemow/handoutbot/internal/logging"
)

// Sender sends requests to the Bot API. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var inlineCodeEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`")

// FormatListing renders a listing as MarkdownV2 with each name in inline code,
// so a tap copies it.
func FormatListing(l handout.Listing) string {
	var b strings.Builder
	for i, name := range l.Names {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strconv.Itoa(l.Start + i))
		b.WriteString("\\. `")
		b.WriteString(inlineCodeEscaper.Replace(name))
		b.WriteString("`")
	}
	return b.String()
}

// redactingSender masks the bot token in send errors. The Bot API client
// reports transport failures with the request URL, which embeds the token.
type redactingSender struct {
	sender Sender
	token  string
}

func (s *redactingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := s.sender.Send(c)
	return msg, logging.RedactError(err, s.token)
}

// chatConversation is a handout.Conversation on one Telegram chat.
type chatConversation struct {
	sender  Sender
	chatID  int64
	metrics *instrumentation.Metrics
}

func newChatConversation(sender Sender, chatID int64, metrics *instrumentation.Metrics) *chatConversation {
	return &chatConversation{sender: sender, chatID: chatID, metrics: metrics}
}

func (c *chatConversation) Reply(ctx context.Context, text string) (handout.MessageID, error) {
	msg, err := c.sender.Send(tgbotapi.NewMessage(c.chatID, text))
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	c.metrics.RecordReply(ctx, instrumentation.ReplyKindText)
	return handout.MessageID(msg.MessageID), nil
}

func (c *chatConversation) Edit(ctx context.Context, id handout.MessageID, text string) error {
	if _, err := c.sender.Send(tgbotapi.NewEditMessageText(c.chatID, int(id), text)); err != nil {
		return fmt.Errorf("failed to edit message %d: %w", id, err)
	}
	c.metrics.RecordReply(ctx, instrumentation.ReplyKindEdit)
	return nil
}

func (c *chatConversation) ReplyListing(ctx context.Context, listing handout.Listing) error {
	msg := tgbotapi.NewMessage(c.chatID, FormatListing(listing))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := c.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send listing %d-%d: %w", listing.Start, listing.End(), err)
	}
	c.metrics.RecordReply(ctx, instrumentation.ReplyKindListing)
	return nil
}

func (c *chatConversation) ReplyDocument(ctx context.Context, url string) error {
	if _, err := c.sender.Send(tgbotapi.NewDocument(c.chatID, tgbotapi.FileURL(url))); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	c.metrics.RecordReply(ctx, instrumentation.ReplyKindDocument)
	return nil
}
