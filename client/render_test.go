package main

import (
	"bytes"
	"chat-feed/domain"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func feedItem(body, author string, at time.Time) domain.FeedItem {
	return domain.FeedItem{
		Message: domain.Message{ID: uuid.Must(uuid.NewV7()), RoomID: "general", AuthorID: domain.UserID(author), Body: body, CreatedAt: at},
		Author:  domain.Author{ID: domain.UserID(author), Name: author},
	}
}

func TestRenderer_History_Prints_Oldest_First(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	r := newRenderer(&buf, false)
	now := time.Now()
	items := []domain.FeedItem{feedItem("hello", "Bob", now), feedItem("hi", "Alice", now.Add(-time.Minute))}

	r.history(items)

	out := buf.String()
	req.Less(strings.Index(out, "hi"), strings.Index(out, "hello"))
	req.Contains(out, "Alice")
	// The caller window is left untouched
	req.Equal("hello", items[0].Message.Body)
}

func TestRenderer_Item_Without_Colours(t *testing.T) {
	var buf bytes.Buffer
	item := feedItem("boo", domain.AnonymousName, time.Now())
	item.Author.IsAnonymous = true

	newRenderer(&buf, false).item(item)

	require.Contains(t, buf.String(), "Anonymous: boo")
}
