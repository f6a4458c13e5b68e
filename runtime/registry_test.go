package runtime

import (
	"chat-feed/contract"
	"chat-feed/domain"
	"chat-feed/domain/event"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func subscriber(roomID domain.RoomID, name string) contract.Subscriber {
	return contract.Subscriber{ID: uuid.NewString(), Room: roomID, PageSize: 20, Sink: Sink{name: name}}
}

func TestRegistry_Subscribe_One_Room_One_Subscriber(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.RoomID("general")
	sub := subscriber(roomID, "a")

	// Given nobody is connected
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)

	// When a subscriber joins a room
	registry.Subscribe(sub)

	// Then
	req.Len(registry.Sessions, 1)
	req.Equal(sub, registry.Sessions[sub.ID])
	req.Len(registry.RoomMembers, 1)
	req.Contains(registry.RoomMembers[roomID], sub.ID)
	req.Equal([]contract.Subscriber{sub}, registry.GetSinksForRoom(roomID))
	req.Equal(1, registry.Count())
}

func TestRegistry_Subscribe_One_Room_Multiple_Subscribers(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.RoomID("general")
	sub1 := subscriber(roomID, "a")
	sub2 := subscriber(roomID, "b")

	registry.Subscribe(sub1)
	registry.Subscribe(sub2)

	req.Len(registry.Sessions, 2)
	req.Len(registry.RoomMembers[roomID], 2)
	req.ElementsMatch([]contract.Subscriber{sub1, sub2}, registry.GetSinksForRoom(roomID))
}

func TestRegistry_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sub1 := subscriber("room-a", "a")
	sub2 := subscriber("room-b", "b")

	registry.Subscribe(sub1)
	registry.Subscribe(sub2)

	req.Equal([]contract.Subscriber{sub1}, registry.GetSinksForRoom("room-a"))
	req.Equal([]contract.Subscriber{sub2}, registry.GetSinksForRoom("room-b"))
	req.Nil(registry.GetSinksForRoom("room-c"))
}

func TestRegistry_Unsubscribe_Cleans_Empty_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	roomID := domain.RoomID("general")
	sub := subscriber(roomID, "a")
	registry.Subscribe(sub)

	// When the only subscriber leaves
	req.True(registry.Unsubscribe(sub.ID, roomID))

	// Then no empty set is left behind
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)
	req.Nil(registry.GetSinksForRoom(roomID))

	// And leaving twice is a no-op
	req.False(registry.Unsubscribe(sub.ID, roomID))
}

func TestRegistry_Resubscribe_Moves_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sub := subscriber("room-a", "a")
	registry.Subscribe(sub)

	moved := sub
	moved.Room = "room-b"
	registry.Subscribe(moved)

	req.Nil(registry.GetSinksForRoom("room-a"))
	req.Equal([]contract.Subscriber{moved}, registry.GetSinksForRoom("room-b"))
	req.Equal(1, registry.Count())
}
