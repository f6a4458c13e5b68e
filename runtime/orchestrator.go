// Package runtime wires invalidations, live view shards and subscriptions together.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"chat-feed/contract"
	"chat-feed/domain"
	"chat-feed/domain/event"
	"chat-feed/observability"
	"chat-feed/runtime/workers"
	"chat-feed/sink"
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   *Registry
	metrics    *observability.FeedMetrics
	shards     []*workers.LiveView
	sinks      map[string]*sink.SnapshotSink
	done       chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	loader contract.FirstPageLoader, metrics *observability.FeedMetrics,
	numWorkers int, coalesceWindow, sinkTimeout time.Duration) *Orchestrator {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	shards := make([]*workers.LiveView, numWorkers)
	for i := range shards {
		shards[i] = workers.NewLiveView(log, registry, loader, metrics, coalesceWindow, sinkTimeout).
			WithName(fmt.Sprintf("live_view_%d", i))
	}
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		metrics:    metrics,
		shards:     shards,
		sinks:      make(map[string]*sink.SnapshotSink),
	}
}

// shardFor always returns the same shard for a room, so the versions of a room are ordered.
func (o *Orchestrator) shardFor(room domain.RoomID) *workers.LiveView {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return o.shards[h.Sum32()%uint32(len(o.shards))]
}

// Publish routes an invalidation to the shard owning its room. It never blocks.
func (o *Orchestrator) Publish(inv event.Invalidation) {
	o.shardFor(inv.Room).Publish(inv)
}

// Subscribe registers a latest-wins sink on the first page of a room.
// The initial snapshot goes through the shard like any other recomputation.
func (o *Orchestrator) Subscribe(room domain.RoomID, pageSize int) contract.Subscription {
	snapshots := sink.NewSnapshotSink()
	subscription := &Subscription{
		id:           ulid.Make().String(),
		room:         room,
		pageSize:     pageSize,
		sink:         snapshots,
		orchestrator: o,
	}

	o.mu.Lock()
	o.sinks[subscription.id] = snapshots
	o.mu.Unlock()

	o.registry.Subscribe(contract.Subscriber{ID: subscription.id, Room: room, PageSize: pageSize, Sink: snapshots})
	o.metrics.ActiveSubscriptions.Inc()
	o.log.Debug("Subscription registered", "subscription_id", subscription.id, "room_id", room, "page_size", pageSize)

	o.Publish(event.Invalidation{Room: room, Cause: event.CauseSubscribed, At: time.Now().UTC()})
	return subscription
}

// Unsubscribe removes the sink and closes it: nothing is observable afterwards.
func (o *Orchestrator) Unsubscribe(subscriptionID string, room domain.RoomID) {
	o.mu.Lock()
	snapshots, ok := o.sinks[subscriptionID]
	delete(o.sinks, subscriptionID)
	o.mu.Unlock()

	if o.registry.Unsubscribe(subscriptionID, room) {
		o.metrics.ActiveSubscriptions.Dec()
		o.log.Debug("Subscription removed", "subscription_id", subscriptionID, "room_id", room)
	}
	if ok {
		snapshots.Close()
	}
}

// Start hands the shards to the supervisor and returns immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.done != nil {
		o.mu.Unlock()
		return
	}
	o.done = make(chan struct{})
	done := o.done
	for _, shard := range o.shards {
		o.supervisor.Add(shard)
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "shards", len(o.shards))
	go func() {
		defer close(done)
		o.supervisor.Run(ctx)
	}()
}

// Stop cancels the shards, waits for them and closes every remaining subscription
// so that blocked readers return.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()

	o.mu.Lock()
	done := o.done
	sinks := o.sinks
	o.sinks = make(map[string]*sink.SnapshotSink)
	o.mu.Unlock()

	if done != nil {
		<-done
	}
	for _, snapshots := range sinks {
		snapshots.Close()
	}
	o.log.Debug("Orchestrator stopped", "closed_subscriptions", len(sinks))
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id           string
	room         domain.RoomID
	pageSize     int
	sink         *sink.SnapshotSink
	orchestrator *Orchestrator
	once         sync.Once
}

func (s *Subscription) ID() string { return s.id }

func (s *Subscription) Room() domain.RoomID { return s.room }

func (s *Subscription) PageSize() int { return s.pageSize }

// Next blocks until a snapshot newer than the last one read is available.
func (s *Subscription) Next(ctx context.Context) (domain.Snapshot, error) {
	return s.sink.Next(ctx)
}

// Close is idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.orchestrator.Unsubscribe(s.id, s.room)
	})
}
