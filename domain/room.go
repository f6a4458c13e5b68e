package domain

import (
	"strings"
	"time"
)

type RoomID string

// Valid rejects identifiers that cannot be embedded in a store key.
func (r RoomID) Valid() bool {
	return r != "" && !strings.ContainsAny(string(r), ":|")
}

type Room struct {
	ID          RoomID
	Name        string
	Description string
	CreatedBy   UserID
	CreatedAt   time.Time
	IsPrivate   bool
}
