package feed

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Paginator computes pages of a room history.
type Paginator struct {
	messages    repositories.IMessageRepository
	enricher    Enricher
	maxPageSize int
	log         *slog.Logger
}

func NewPaginator(messages repositories.IMessageRepository, enricher Enricher, maxPageSize int, log *slog.Logger) Paginator {
	return Paginator{messages: messages, enricher: enricher, maxPageSize: maxPageSize, log: log}
}

// Page returns up to pageSize messages older than cursor, newest first, joined with their authors.
// A nil cursor starts from the newest message. A cursor issued for another room,
// or naming a message that does not exist, yields an empty page rather than an error.
func (p Paginator) Page(ctx context.Context, room domain.RoomID, cursor *string, pageSize int) (domain.Page, error) {
	raw, err := p.RawPage(ctx, room, cursor, pageSize)
	if err != nil {
		return domain.Page{}, err
	}
	page := domain.Page{
		Items:   p.enricher.Enrich(ctx, raw.Messages),
		HasMore: raw.HasMore,
	}
	if len(raw.Messages) > 0 {
		page.Continuation = lo.ToPtr(EncodeCursor(raw.Messages[len(raw.Messages)-1]))
	}
	return page, nil
}

// RawPage is Page without the author join.
func (p Paginator) RawPage(ctx context.Context, room domain.RoomID, cursor *string, pageSize int) (domain.RawPage, error) {
	if pageSize <= 0 {
		return domain.RawPage{}, fmt.Errorf("%w: page size must be positive, got %d", errors.ErrInvalidArgument, pageSize)
	}
	if p.maxPageSize > 0 && pageSize > p.maxPageSize {
		pageSize = p.maxPageSize
	}

	var after *repositories.Position
	if cursor != nil {
		position, ok, err := p.resolve(ctx, room, *cursor)
		if err != nil {
			return domain.RawPage{}, err
		}
		if !ok {
			return domain.RawPage{Messages: []domain.Message{}}, nil
		}
		after = &position
	}
	return p.messages.ListPage(ctx, room, after, pageSize)
}

// resolve checks that a cursor designates an existing message of room.
func (p Paginator) resolve(ctx context.Context, room domain.RoomID, cursor string) (repositories.Position, bool, error) {
	cursorRoom, position, err := DecodeCursor(cursor)
	if err != nil {
		return repositories.Position{}, false, err
	}
	if cursorRoom != room {
		p.log.Debug("Cursor issued for another room", "room_id", room)
		return repositories.Position{}, false, nil
	}
	message, err := p.messages.GetMessage(ctx, position.ID)
	if goerrors.Is(err, errors.ErrMessageNotFound) {
		return repositories.Position{}, false, nil
	}
	if err != nil {
		return repositories.Position{}, false, err
	}
	if message.RoomID != room || !message.CreatedAt.Equal(position.At) {
		return repositories.Position{}, false, nil
	}
	return position, true, nil
}
