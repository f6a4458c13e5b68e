package workers

import (
	"chat-feed/contract"
	"chat-feed/domain"
	"chat-feed/domain/event"
	"chat-feed/errors"
	"chat-feed/observability"
	"context"
	goerrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

// LiveView recomputes the first page of the rooms it owns and pushes it to their subscribers.
//
// Invalidations are collected in a dirty set: a room invalidated many times
// before the worker wakes up is recomputed once. The set outlives a crash of
// Run, so a restarted worker picks up what was pending.
type LiveView struct {
	Name        contract.WorkerName
	log         *slog.Logger
	registry    contract.IRegistry
	loader      contract.FirstPageLoader
	metrics     *observability.FeedMetrics
	window      time.Duration
	sinkTimeout time.Duration

	mu       sync.Mutex
	dirty    map[domain.RoomID]event.Invalidation
	versions map[domain.RoomID]uint64
	wake     chan struct{}
}

func NewLiveView(log *slog.Logger, registry contract.IRegistry, loader contract.FirstPageLoader,
	metrics *observability.FeedMetrics, window, sinkTimeout time.Duration) *LiveView {
	return &LiveView{
		log:         log,
		registry:    registry,
		loader:      loader,
		metrics:     metrics,
		window:      window,
		sinkTimeout: sinkTimeout,
		dirty:       make(map[domain.RoomID]event.Invalidation),
		versions:    make(map[domain.RoomID]uint64),
		wake:        make(chan struct{}, 1),
	}
}

func (w *LiveView) WithName(name string) *LiveView {
	w.Name = contract.WorkerName(name)
	return w
}

func (w *LiveView) GetName() contract.WorkerName { return w.Name }

// Publish marks a room dirty. It never blocks.
func (w *LiveView) Publish(inv event.Invalidation) {
	w.mu.Lock()
	_, pending := w.dirty[inv.Room]
	w.dirty[inv.Room] = inv
	w.mu.Unlock()

	w.metrics.Invalidations.Inc()
	if pending {
		w.metrics.CoalescedInvalidations.Inc()
		return
	}
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *LiveView) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping live view", "name", w.Name)
			return nil
		case <-w.wake:
		}

		// Let the burst settle so that it costs a single recomputation
		if w.window > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.window):
			}
		}

		for _, room := range w.drain() {
			w.Refresh(ctx, room)
		}
	}
}

func (w *LiveView) drain() []domain.RoomID {
	w.mu.Lock()
	defer w.mu.Unlock()
	rooms := lo.Keys(w.dirty)
	w.dirty = make(map[domain.RoomID]event.Invalidation, len(rooms))
	return rooms
}

// Refresh recomputes the first page of a room once per distinct page size
// and hands the snapshot to every subscriber of the room.
func (w *LiveView) Refresh(ctx context.Context, room domain.RoomID) {
	subscribers := w.registry.GetSinksForRoom(room)
	if len(subscribers) == 0 {
		return
	}
	version := w.nextVersion(room)

	for pageSize, group := range lo.GroupBy(subscribers, func(s contract.Subscriber) int { return s.PageSize }) {
		timer := prometheus.NewTimer(w.metrics.RecomputeDuration)
		page, err := w.loader.Page(ctx, room, nil, pageSize)
		timer.ObserveDuration()
		if err != nil {
			w.metrics.RecomputeFailures.Inc()
			w.log.Error("First page recomputation failed", "room_id", room, "page_size", pageSize, "error", err)
			continue
		}
		w.metrics.Recomputations.Inc()

		pushed := event.SnapshotPushed{Snapshot: domain.Snapshot{
			Room:     room,
			Version:  version,
			PageSize: pageSize,
			Page:     page,
			At:       time.Now().UTC(),
		}}
		for _, subscriber := range group {
			w.push(ctx, subscriber, pushed)
		}
	}
}

func (w *LiveView) push(ctx context.Context, subscriber contract.Subscriber, pushed event.SnapshotPushed) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	err := subscriber.Sink.Consume(sinkCtx, pushed)
	switch {
	case err == nil:
		w.metrics.SnapshotsPushed.Inc()
	case goerrors.Is(err, errors.ErrSinkClosed):
		// Unsubscribed while the page was being recomputed
		w.log.Debug("Snapshot dropped, sink closed", "subscription_id", subscriber.ID)
	default:
		w.metrics.PushFailures.Inc()
		w.log.Warn("Snapshot push failed", "subscription_id", subscriber.ID, "room_id", subscriber.Room, "error", err)
	}
}

func (w *LiveView) nextVersion(room domain.RoomID) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.versions[room]++
	return w.versions[room]
}
