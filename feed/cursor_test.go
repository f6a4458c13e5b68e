package feed

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursor_Round_Trip(t *testing.T) {
	req := require.New(t)
	m := domain.Message{ID: uuid.New(), RoomID: "room-1", CreatedAt: time.Unix(0, 42).UTC()}

	room, position, err := DecodeCursor(EncodeCursor(m))
	req.NoError(err)
	req.Equal(domain.RoomID("room-1"), room)
	req.Equal(m.ID, position.ID)
	req.True(m.CreatedAt.Equal(position.At))
}

func TestCursor_Malformed(t *testing.T) {
	req := require.New(t)
	for _, token := range []string{
		"",
		"!!!",
		base64.RawURLEncoding.EncodeToString([]byte("no-separator")),
		base64.RawURLEncoding.EncodeToString([]byte(":0000000000000000001:" + uuid.NewString())),
		base64.RawURLEncoding.EncodeToString([]byte("room:12:" + uuid.NewString())),
	} {
		_, _, err := DecodeCursor(token)
		req.ErrorIs(err, errors.ErrInvalidArgument, token)
	}
}
