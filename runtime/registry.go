package runtime

import (
	"chat-feed/contract"
	"chat-feed/domain"
	"sync"
)

type Set map[string]struct{}

// Registry tracks live view subscriptions.
// A subscription is scoped to exactly one room.
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.Subscriber // map subscription -> Subscriber
	RoomMembers map[domain.RoomID]Set          // map room to subscriptions
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.Subscriber),
		RoomMembers: make(map[domain.RoomID]Set),
	}
}

// GetSinksForRoom resolves the subscriptions of a room into their subscribers.
// Returns nil if the room has no subscribers.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[roomID]
	if !ok {
		return nil
	}
	subscribers := make([]contract.Subscriber, 0, len(members))
	for subscriptionID := range members {
		if subscriber, exists := r.Sessions[subscriptionID]; exists {
			subscribers = append(subscribers, subscriber)
		}
	}
	return subscribers
}

// Subscribe registers a subscriber in its room.
// Resubscribing with the same id replaces the previous registration.
func (r *Registry) Subscribe(subscriber contract.Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.Sessions[subscriber.ID]; ok && previous.Room != subscriber.Room {
		r.removeMember(subscriber.ID, previous.Room)
	}
	r.Sessions[subscriber.ID] = subscriber

	if _, ok := r.RoomMembers[subscriber.Room]; !ok {
		r.RoomMembers[subscriber.Room] = make(Set)
	}
	r.RoomMembers[subscriber.Room][subscriber.ID] = struct{}{}
}

// Unsubscribe removes a subscription. It reports whether something was removed.
func (r *Registry) Unsubscribe(subscriptionID string, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.Sessions[subscriptionID]
	delete(r.Sessions, subscriptionID)
	r.removeMember(subscriptionID, roomID)
	return existed
}

// Count returns the number of live subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Sessions)
}

func (r *Registry) removeMember(subscriptionID string, roomID domain.RoomID) {
	if members, ok := r.RoomMembers[roomID]; ok {
		delete(members, subscriptionID)

		// No empty sets left behind
		if len(members) == 0 {
			delete(r.RoomMembers, roomID)
		}
	}
}
