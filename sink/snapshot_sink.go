// Package sink holds the per-connection endpoints the live view pushes into.
package sink

import (
	"chat-feed/domain"
	"chat-feed/domain/event"
	"chat-feed/errors"
	"context"
	"sync"
)

// SnapshotSink keeps at most one pending snapshot for a connection.
// A newer snapshot replaces an unread older one, so a slow reader only ever
// sees the latest consistent first page, never a backlog.
// Snapshots older than the last accepted version are dropped.
type SnapshotSink struct {
	mu          sync.Mutex
	pending     *domain.Snapshot
	lastVersion uint64
	closed      bool
	ready       chan struct{}
	done        chan struct{}
}

func NewSnapshotSink() *SnapshotSink {
	return &SnapshotSink{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Consume is called by the live view worker.
// It never blocks: the transport goroutine picks the snapshot up with Take.
func (s *SnapshotSink) Consume(ctx context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.SnapshotPushed)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.ErrSinkClosed
	}
	if evt.Snapshot.Version <= s.lastVersion {
		s.mu.Unlock()
		return nil
	}
	snapshot := evt.Snapshot
	s.pending = &snapshot
	s.lastVersion = snapshot.Version
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return nil
}

// Take returns the pending snapshot, if any.
func (s *SnapshotSink) Take() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pending == nil {
		return domain.Snapshot{}, false
	}
	snapshot := *s.pending
	s.pending = nil
	return snapshot, true
}

// Ready is signalled whenever a snapshot becomes pending.
func (s *SnapshotSink) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed once the sink is closed.
func (s *SnapshotSink) Done() <-chan struct{} {
	return s.done
}

// Next blocks until a snapshot is available, the sink is closed or ctx is done.
func (s *SnapshotSink) Next(ctx context.Context) (domain.Snapshot, error) {
	for {
		if snapshot, ok := s.Take(); ok {
			return snapshot, nil
		}
		select {
		case <-ctx.Done():
			return domain.Snapshot{}, ctx.Err()
		case <-s.done:
			return domain.Snapshot{}, errors.ErrSinkClosed
		case <-s.ready:
		}
	}
}

// Close drops any pending snapshot and refuses further ones. It is idempotent.
func (s *SnapshotSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pending = nil
	close(s.done)
}
