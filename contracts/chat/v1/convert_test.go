package v1_test

import (
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestToSnapshot_Restores_What_The_Server_Pushed(t *testing.T) {
	req := require.New(t)
	continuation := "opaque"
	snapshot := domain.Snapshot{
		Room:     "general",
		Version:  7,
		PageSize: 2,
		Page: domain.Page{
			Items: []domain.FeedItem{{
				Message: domain.Message{ID: uuid.Must(uuid.NewV7()), RoomID: "general", AuthorID: "ghost", Body: "boo",
					CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
				Author: domain.AnonymousAuthor("ghost"),
			}},
			Continuation: &continuation,
			HasMore:      true,
		},
		At: time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	req.Equal(snapshot, v1.ToSnapshot(v1.FromSnapshot("sub", snapshot)))
}

func TestToItems_Skips_Malformed_Ids(t *testing.T) {
	items := v1.ToItems([]v1.FeedItem{{Message: v1.Message{ID: "not-a-uuid"}}})
	require.Empty(t, items)
}
