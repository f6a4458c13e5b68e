//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-feed/domain"
	"chat-feed/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	if named, ok := w.(interface{ GetName() WorkerName }); ok && named.GetName() != "" {
		return string(named.GetName())
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Subscriber is a live view registration: one sink watching the first page of a room.
type Subscriber struct {
	ID       string
	Room     domain.RoomID
	PageSize int
	Sink     EventSink
}

type IRegistry interface {
	GetSinksForRoom(roomID domain.RoomID) []Subscriber
	Subscribe(subscriber Subscriber)
	Unsubscribe(subscriptionID string, roomID domain.RoomID) bool
}

// FirstPageLoader recomputes the page a live view pushes.
type FirstPageLoader interface {
	Page(ctx context.Context, room domain.RoomID, cursor *string, pageSize int) (domain.Page, error)
}

// Publisher receives room-scoped invalidations emitted after every committed write.
type Publisher interface {
	Publish(inv event.Invalidation)
}

// Subscription is one live view registration as seen by a transport.
type Subscription interface {
	ID() string
	Room() domain.RoomID
	Next(ctx context.Context) (domain.Snapshot, error)
	Close()
}

type ILiveFeed interface {
	Publisher
	Subscribe(room domain.RoomID, pageSize int) Subscription
}
