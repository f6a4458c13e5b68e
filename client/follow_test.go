package main

import (
	"bytes"
	"chat-feed/domain"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// fakeRoom pages its messages newest first. A cursor is the index of the oldest item returned.
type fakeRoom struct {
	items    []domain.FeedItem
	pageSize int
	version  uint64
}

func newFakeRoom(n, pageSize int) *fakeRoom {
	r := &fakeRoom{pageSize: pageSize}
	r.post(n)
	return r
}

func (r *fakeRoom) post(n int) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(len(r.items)) * time.Second)
		r.items = append(r.items, feedItem(fmt.Sprintf("m%02d", len(r.items)+1), "Alice", at))
	}
}

func (r *fakeRoom) load(_ context.Context, cursor *string) (domain.Page, error) {
	end := len(r.items)
	if cursor != nil {
		end, _ = strconv.Atoi(*cursor)
	}
	start := max(0, end-r.pageSize)
	page := domain.Page{HasMore: start > 0}
	for i := end - 1; i >= start; i-- {
		page.Items = append(page.Items, r.items[i])
	}
	if len(page.Items) > 0 {
		page.Continuation = lo.ToPtr(strconv.Itoa(start))
	}
	return page, nil
}

func (r *fakeRoom) push() domain.Snapshot {
	r.version++
	page, _ := r.load(context.Background(), nil)
	return domain.Snapshot{Room: "general", Version: r.version, PageSize: r.pageSize, Page: page}
}

func printedBodies(out string) []string {
	return lo.FilterMap(strings.Split(strings.TrimSpace(out), "\n"), func(line string, _ int) (string, bool) {
		_, body, ok := strings.Cut(line, "Alice: ")
		return body, ok
	})
}

func TestFollower_Holds_Pushes_While_Reading_Older_Pages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	var buf bytes.Buffer
	room := newFakeRoom(10, 5)
	f := newFollower(slog.New(slog.DiscardHandler), newRenderer(&buf, false), "general", room.load)

	// Given a reader who scrolled back through two pages
	req.NoError(f.scrollBack(ctx, 2))
	req.Equal(10, f.timeline.Len())
	req.False(f.anchor.FollowingTail())
	req.Equal(float64(10), f.anchor.Offset())
	buf.Reset()

	// When a burst larger than a page is pushed
	room.post(6)
	req.NoError(f.apply(ctx, room.push()))

	// Then nothing is printed and the cached pages are kept
	req.Empty(buf.String())
	req.Equal(1, f.buffered)
	req.Equal(15, f.timeline.Len())
	req.Len(f.timeline.Gaps(), 1)

	// When the reader returns to the newest message
	req.NoError(f.resume(ctx))

	// Then the gap is filled and the held messages are printed once, oldest first
	req.True(f.anchor.FollowingTail())
	req.Empty(f.timeline.Gaps())
	req.Equal(16, f.timeline.Len())
	req.Equal([]string{"m11", "m12", "m13", "m14", "m15", "m16"}, printedBodies(buf.String()))
}

func TestFollower_Prints_Pushes_While_Following(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	var buf bytes.Buffer
	room := newFakeRoom(3, 5)
	f := newFollower(slog.New(slog.DiscardHandler), newRenderer(&buf, false), "general", room.load)

	req.NoError(f.apply(ctx, room.push()))
	req.Equal([]string{"m01", "m02", "m03"}, printedBodies(buf.String()))
	buf.Reset()

	// When m02 is deleted
	room.items[1].Message = room.items[1].Message.SoftDelete(time.Now())
	req.NoError(f.apply(ctx, room.push()))

	// Then only its tombstone is printed
	req.Equal([]string{domain.Tombstone}, printedBodies(buf.String()))
}
