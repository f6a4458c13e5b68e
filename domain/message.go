// Package domain contains core concepts of the chat feed.
// This file defines Message rows and the soft-delete rule.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tombstone replaces the body of a soft-deleted message.
const Tombstone = "This message has been deleted"

type MessageID = uuid.UUID

// Message is a row of a room history.
// RoomID, AuthorID and CreatedAt never change once inserted.
type Message struct {
	ID        MessageID
	RoomID    RoomID
	AuthorID  UserID
	Body      string
	CreatedAt time.Time
	UpdatedAt *time.Time
	IsDeleted bool
	IsEdited  bool
}

// SoftDelete marks the message deleted and overwrites its body.
// Applying it twice leaves the message in the same state.
func (m Message) SoftDelete(at time.Time) Message {
	m.IsDeleted = true
	m.Body = Tombstone
	m.UpdatedAt = &at
	return m
}

// Before reports whether m sorts strictly before other in the room order (createdAt, id).
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID.String() < other.ID.String()
}
