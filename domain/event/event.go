package event

import (
	"chat-feed/domain"
	"time"
)

type DomainEvent interface {
	RoomID() domain.RoomID
}

type Cause string

const (
	CauseSent       Cause = "sent"
	CauseDeleted    Cause = "deleted"
	CauseSubscribed Cause = "subscribed"
)

// Invalidation tells the live view that the first page of a room is stale.
type Invalidation struct {
	Room      domain.RoomID
	MessageID domain.MessageID
	Cause     Cause
	At        time.Time
}

func (i Invalidation) RoomID() domain.RoomID {
	return i.Room
}

// SnapshotPushed is delivered to subscribers whenever a room first page is recomputed.
type SnapshotPushed struct {
	Snapshot domain.Snapshot
}

func (s SnapshotPushed) RoomID() domain.RoomID {
	return s.Snapshot.Room
}
