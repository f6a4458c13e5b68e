// Package projection holds the client side of a live feed: the live window and the scroll anchor.
// Does not talk to the network or render anything.
package projection

import (
	"chat-feed/domain"
	"chat-feed/domain/event"
	"context"
	"sync"

	"github.com/samber/lo"
)

// Timeline is the live window of one room: the newest page as last pushed,
// followed by the older pages loaded on demand. Items are newest first.
// When a push does not reach the cached items, both segments are kept and a gap
// is recorded between them until FillGap loads the missing messages.
type Timeline struct {
	mu           sync.RWMutex
	room         domain.RoomID
	items        []domain.FeedItem
	gaps         []gap
	version      uint64
	continuation *string
	hasMore      bool
}

// gap sits right above the cached item below.
type gap struct {
	below        domain.MessageID
	continuation *string
}

// Gap describes unseen messages inside the window.
type Gap struct {
	// Index is the position in Items of the first item below the gap.
	Index int
	// Below is the newest cached message under the gap.
	Below domain.MessageID
	// Continuation loads the missing messages, newest first.
	Continuation *string
}

func NewTimeline(room domain.RoomID) *Timeline {
	return &Timeline{room: room}
}

// Consume lets a Timeline be plugged directly behind a subscription.
func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	if evt, ok := e.(event.SnapshotPushed); ok {
		t.ApplySnapshot(evt.Snapshot)
	}
	return nil
}

// ApplySnapshot replaces the newest window. Cached items strictly older than the
// snapshot are always kept. When the snapshot does not reach them a gap is recorded
// with the snapshot continuation.
// It reports false for a snapshot of another room or a stale version.
func (t *Timeline) ApplySnapshot(snapshot domain.Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if snapshot.Room != t.room || snapshot.Version <= t.version {
		return false
	}
	t.version = snapshot.Version

	fresh := snapshot.Page.Items
	if len(fresh) == 0 {
		t.reset(nil, snapshot.Page.Continuation, snapshot.Page.HasMore)
		return true
	}

	oldest := fresh[len(fresh)-1].Message
	older := lo.Filter(t.items, func(item domain.FeedItem, _ int) bool {
		return item.Message.Before(oldest)
	})
	if len(older) == 0 {
		t.reset(fresh, snapshot.Page.Continuation, snapshot.Page.HasMore)
		return true
	}
	contiguous := !snapshot.Page.HasMore || t.overlaps(fresh)

	// Older items keep their own continuation and their gaps
	kept := lo.SliceToMap(older, func(item domain.FeedItem) (domain.MessageID, struct{}) {
		return item.Message.ID, struct{}{}
	})
	t.gaps = lo.Filter(t.gaps, func(g gap, _ int) bool {
		_, ok := kept[g.below]
		return ok
	})
	if !contiguous {
		t.gaps = append([]gap{{below: older[0].Message.ID, continuation: snapshot.Page.Continuation}}, t.gaps...)
	}
	t.items = append(append(make([]domain.FeedItem, 0, len(fresh)+len(older)), fresh...), older...)
	return true
}

// overlaps reports whether the cached window shares an item with the fresh page,
// meaning no message sits unseen between them.
func (t *Timeline) overlaps(fresh []domain.FeedItem) bool {
	cached := lo.SliceToMap(t.items, func(item domain.FeedItem) (domain.MessageID, struct{}) {
		return item.Message.ID, struct{}{}
	})
	return lo.ContainsBy(fresh, func(item domain.FeedItem) bool {
		_, ok := cached[item.Message.ID]
		return ok
	})
}

func (t *Timeline) reset(items []domain.FeedItem, continuation *string, hasMore bool) {
	t.items = append([]domain.FeedItem(nil), items...)
	t.gaps = nil
	t.continuation = continuation
	t.hasMore = hasMore
}

// AppendOlder extends the window with a page loaded from Continuation.
// Items already in the window are skipped.
func (t *Timeline) AppendOlder(page domain.Page) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, item := range page.Items {
		if len(t.items) > 0 && !item.Message.Before(t.items[len(t.items)-1].Message) {
			continue
		}
		t.items = append(t.items, item)
	}
	if page.Continuation != nil {
		t.continuation = page.Continuation
	}
	t.hasMore = page.HasMore
}

// Gaps returns the holes of the window, newest first.
func (t *Timeline) Gaps() []Gap {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return lo.FilterMap(t.gaps, func(g gap, _ int) (Gap, bool) {
		index := t.indexOf(g.below)
		return Gap{Index: index, Below: g.below, Continuation: g.continuation}, index > 0
	})
}

// FillGap inserts a page loaded from the continuation of the gap above below.
// The gap closes once the page reaches the cached item or the room has nothing older,
// otherwise it moves down to the page continuation.
// It reports false when no such gap exists.
func (t *Timeline) FillGap(below domain.MessageID, page domain.Page) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, at, ok := lo.FindIndexOf(t.gaps, func(g gap) bool { return g.below == below })
	index := t.indexOf(below)
	if !ok || index <= 0 {
		return false
	}
	above, floor := t.items[index-1].Message, t.items[index].Message

	missing := lo.Filter(page.Items, func(item domain.FeedItem, _ int) bool {
		return item.Message.Before(above) && floor.Before(item.Message)
	})
	reached := !page.HasMore || page.Continuation == nil || lo.ContainsBy(page.Items, func(item domain.FeedItem) bool {
		return !floor.Before(item.Message)
	})
	if reached {
		t.gaps = append(t.gaps[:at:at], t.gaps[at+1:]...)
	} else {
		t.gaps[at].continuation = page.Continuation
	}
	t.items = append(t.items[:index:index], append(missing, t.items[index:]...)...)
	return true
}

func (t *Timeline) indexOf(id domain.MessageID) int {
	_, index, ok := lo.FindIndexOf(t.items, func(item domain.FeedItem) bool { return item.Message.ID == id })
	if !ok {
		return -1
	}
	return index
}

// Items returns a copy of the window, newest first.
func (t *Timeline) Items() []domain.FeedItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.FeedItem(nil), t.items...)
}

// Continuation is the cursor to pass to the next "load older" call.
func (t *Timeline) Continuation() *string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.continuation
}

func (t *Timeline) HasMore() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hasMore
}

func (t *Timeline) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
