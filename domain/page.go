package domain

import "time"

// FeedItem is a message joined with its author.
type FeedItem struct {
	Message Message
	Author  Author
}

// RawPage is what the store returns for a range scan, before enrichment.
type RawPage struct {
	Messages []Message
	HasMore  bool
}

// Page is an ordered newest-first slice of a room history.
// Continuation is nil when the page is empty.
type Page struct {
	Items        []FeedItem
	Continuation *string
	HasMore      bool
}

// Snapshot is a recomputed first page pushed to live subscribers.
// Version grows monotonically per room.
type Snapshot struct {
	Room     RoomID
	Version  uint64
	PageSize int
	Page     Page
	At       time.Time
}
