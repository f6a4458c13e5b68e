package main

import (
	"chat-feed/domain"
	"chat-feed/projection"
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// pageLoader reads one page of a room, older than cursor when set.
type pageLoader func(ctx context.Context, cursor *string) (domain.Page, error)

// follower prints a live room oldest first. While the reader is anchored on
// older pages, pushes are applied to the timeline but held back.
type follower struct {
	log      *slog.Logger
	out      *renderer
	load     pageLoader
	timeline *projection.Timeline
	anchor   *projection.ScrollAnchor
	printed  map[domain.MessageID]bool
	buffered int
}

func newFollower(log *slog.Logger, out *renderer, room domain.RoomID, load pageLoader) *follower {
	return &follower{
		log:      log,
		out:      out,
		load:     load,
		timeline: projection.NewTimeline(room),
		anchor:   projection.NewScrollAnchor(),
		printed:  make(map[domain.MessageID]bool),
	}
}

// scrollBack loads up to pages pages and anchors the reader on them.
// Heights are counted in printed lines.
func (f *follower) scrollBack(ctx context.Context, pages int) error {
	if pages <= 0 {
		return nil
	}
	f.anchor.LoadOlderTriggered(0)
	for i := 0; i < pages; i++ {
		if i > 0 && !f.timeline.HasMore() {
			break
		}
		page, err := f.load(ctx, f.timeline.Continuation())
		if err != nil {
			return err
		}
		f.timeline.AppendOlder(page)
		f.anchor.OlderLoaded(float64(len(page.Items)))
	}
	items := f.timeline.Items()
	f.out.history(items)
	for _, item := range items {
		f.printed[item.Message.ID] = item.Message.IsDeleted
	}
	return nil
}

// apply takes a pushed snapshot into the timeline and prints it unless the reader is anchored.
func (f *follower) apply(ctx context.Context, snapshot domain.Snapshot) error {
	if !f.timeline.ApplySnapshot(snapshot) {
		return nil
	}
	if !f.anchor.RemotePush() {
		f.buffered++
		f.log.Debug("Push held while anchored", "version", snapshot.Version, "held", f.buffered)
		return nil
	}
	f.log.Debug("Snapshot applied", "version", snapshot.Version, "items", f.timeline.Len())
	return f.flush(ctx)
}

// resume brings the reader back to the newest message and prints what was held back.
func (f *follower) resume(ctx context.Context) error {
	f.anchor.UserScrolled(0, true)
	f.log.Debug("Back to the newest message", "held", f.buffered)
	f.buffered = 0
	return f.flush(ctx)
}

// flush fills the gaps then prints unseen items and new tombstones, oldest first.
func (f *follower) flush(ctx context.Context) error {
	if err := f.fillGaps(ctx); err != nil {
		return err
	}
	unseen := lo.Filter(f.timeline.Items(), func(item domain.FeedItem, _ int) bool {
		deleted, seen := f.printed[item.Message.ID]
		return !seen || (item.Message.IsDeleted && !deleted)
	})
	for _, item := range lo.Reverse(unseen) {
		f.printed[item.Message.ID] = item.Message.IsDeleted
		f.out.item(item)
	}
	return nil
}

func (f *follower) fillGaps(ctx context.Context) error {
	for _, gap := range f.timeline.Gaps() {
		continuation := gap.Continuation
		for continuation != nil {
			page, err := f.load(ctx, continuation)
			if err != nil {
				return err
			}
			if !f.timeline.FillGap(gap.Below, page) {
				break
			}
			continuation = nil
			if open, ok := lo.Find(f.timeline.Gaps(), func(g projection.Gap) bool { return g.Below == gap.Below }); ok {
				continuation = open.Continuation
			}
		}
	}
	return nil
}
