// Package feed turns raw room scans into enriched, resumable pages.
//
// A room history is an append-only, soft-mutable sequence ordered newest first
// by (createdAt, id). Pages are addressed with opaque cursors naming the oldest
// item already delivered, so inserts (always newer) and soft-deletes (rows are
// kept) never shift a page that was handed out.
package feed

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/repositories"
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeCursor builds the opaque continuation token pointing at message m.
func EncodeCursor(m domain.Message) string {
	raw := string(m.RoomID) + ":" + repositories.PositionOf(m).String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor extracts the room and position a token was issued for.
func DecodeCursor(token string) (domain.RoomID, repositories.Position, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", repositories.Position{}, fmt.Errorf("%w: malformed cursor", errors.ErrInvalidArgument)
	}
	room, position, ok := strings.Cut(string(raw), ":")
	if !ok || room == "" {
		return "", repositories.Position{}, fmt.Errorf("%w: malformed cursor", errors.ErrInvalidArgument)
	}
	p, err := repositories.ParsePosition(position)
	if err != nil {
		return "", repositories.Position{}, err
	}
	return domain.RoomID(room), p, nil
}
