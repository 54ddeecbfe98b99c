package handout

import (
	"context"
	"fmt"
	"strings"
)

// EventKind tells what a Transcript event did.
type EventKind string

const (
	EventReply    EventKind = "reply"
	EventEdit     EventKind = "edit"
	EventListing  EventKind = "listing"
	EventDocument EventKind = "document"
)

// Event is one outbound action recorded by a Transcript.
type Event struct {
	Kind EventKind
	// Message is the id of the replied or edited message.
	Message MessageID
	// Text is the message text, the rendered listing or the document URL.
	Text    string
	Listing Listing
}

// Transcript is an in-memory Conversation. It is not safe for concurrent use.
type Transcript struct {
	Events []Event

	next MessageID
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Reply(_ context.Context, text string) (MessageID, error) {
	t.next++
	t.Events = append(t.Events, Event{Kind: EventReply, Message: t.next, Text: text})
	return t.next, nil
}

func (t *Transcript) Edit(_ context.Context, id MessageID, text string) error {
	if id <= 0 || id > t.next {
		return fmt.Errorf("unknown message %d", id)
	}
	t.Events = append(t.Events, Event{Kind: EventEdit, Message: id, Text: text})
	return nil
}

func (t *Transcript) ReplyListing(_ context.Context, listing Listing) error {
	t.next++
	t.Events = append(t.Events, Event{Kind: EventListing, Message: t.next, Text: listing.Text(), Listing: listing})
	return nil
}

func (t *Transcript) ReplyDocument(_ context.Context, url string) error {
	t.next++
	t.Events = append(t.Events, Event{Kind: EventDocument, Message: t.next, Text: url})
	return nil
}

// Messages returns the final text of every message in the order they were
// sent, with edits applied. Documents render as "[document] <url>".
func (t *Transcript) Messages() []string {
	messages := make([]string, 0, t.next)
	index := make(map[MessageID]int, t.next)
	for _, ev := range t.Events {
		switch ev.Kind {
		case EventEdit:
			messages[index[ev.Message]] = ev.Text
		case EventDocument:
			index[ev.Message] = len(messages)
			messages = append(messages, "[document] "+ev.Text)
		default:
			index[ev.Message] = len(messages)
			messages = append(messages, strings.TrimRight(ev.Text, "\n"))
		}
	}
	return messages
}

// Listings returns every listing sent, in order.
func (t *Transcript) Listings() []Listing {
	var listings []Listing
	for _, ev := range t.Events {
		if ev.Kind == EventListing {
			listings = append(listings, ev.Listing)
		}
	}
	return listings
}

// String renders the messages separated by blank lines.
func (t *Transcript) String() string {
	return strings.Join(t.Messages(), "\n\n")
}
