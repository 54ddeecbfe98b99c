package handout

import (
	"context"
	"strconv"
	"strings"
)

// DefaultChunkSize is the most entries a single listing message carries.
const DefaultChunkSize = 50

// MessageID refers to a message previously sent through a Conversation.
type MessageID int

// Conversation is the outbound side of one chat.
type Conversation interface {
	// Reply sends a plain text message.
	Reply(ctx context.Context, text string) (MessageID, error)
	// Edit replaces the text of a message sent by Reply.
	Edit(ctx context.Context, id MessageID, text string) error
	// ReplyListing sends one chunk of numbered file names.
	ReplyListing(ctx context.Context, listing Listing) error
	// ReplyDocument sends the file found at url as a document.
	ReplyDocument(ctx context.Context, url string) error
}

// Listing is a run of file names numbered from Start.
type Listing struct {
	Start int
	Names []string
}

// End returns the number of the last entry.
func (l Listing) End() int {
	return l.Start + len(l.Names) - 1
}

// Text renders the listing as numbered lines with names in backticks,
// separated by blank lines.
func (l Listing) Text() string {
	var b strings.Builder
	for i, name := range l.Names {
		b.WriteString(strconv.Itoa(l.Start + i))
		b.WriteString(". `")
		b.WriteString(name)
		b.WriteString("`\n\n")
	}
	return b.String()
}

// Chunk splits names into listings of at most size entries. Numbering starts
// at 1 and continues across chunks. No listing is empty.
func Chunk(names []string, size int) []Listing {
	if size <= 0 {
		size = DefaultChunkSize
	}

	listings := make([]Listing, 0, (len(names)+size-1)/size)
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		listings = append(listings, Listing{Start: start + 1, Names: names[start:end]})
	}
	return listings
}
