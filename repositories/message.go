//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	messagePrefix      = "msg:"
	messageIndexPrefix = "idx:msg:"
	// Any key suffix of a room sorts below this one: timestamps are digits and ':' < 0xff.
	seekNewest = "\xff"
)

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetMessage(ctx context.Context, id domain.MessageID) (domain.Message, error)
	SoftDeleteMessage(ctx context.Context, id domain.MessageID, requester domain.UserID, at time.Time) (domain.Message, error)
	ListPage(ctx context.Context, room domain.RoomID, after *Position, limit int) (domain.RawPage, error)
}

// Position locates a message inside the total order of its room.
type Position struct {
	At time.Time
	ID domain.MessageID
}

func PositionOf(m domain.Message) Position {
	return Position{At: m.CreatedAt, ID: m.ID}
}

// String renders the position the way it appears at the end of a message key.
func (p Position) String() string {
	return fmt.Sprintf("%019d:%s", p.At.UnixNano(), p.ID)
}

// ParsePosition is the inverse of Position.String.
func ParsePosition(s string) (Position, error) {
	nanos, id, ok := strings.Cut(s, ":")
	if !ok || len(nanos) != 19 {
		return Position{}, fmt.Errorf("%w: malformed position %q", errors.ErrInvalidArgument, s)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return Position{}, fmt.Errorf("%w: malformed timestamp: %v", errors.ErrInvalidArgument, err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return Position{}, fmt.Errorf("%w: malformed message id: %v", errors.ErrInvalidArgument, err)
	}
	return Position{At: time.Unix(0, n).UTC(), ID: parsedID}, nil
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// messageKey is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" so that:
//  1. a reverse prefix scan yields (createdAt desc, id desc) thanks to the 19-digit zero padding,
//  2. two messages created at the same nanosecond still get distinct, ordered keys.
func messageKey(room domain.RoomID, p Position) []byte {
	return []byte(messagePrefix + string(room) + ":" + p.String())
}

func roomMessagesPrefix(room domain.RoomID) []byte {
	return []byte(messagePrefix + string(room) + ":")
}

func messageIndexKey(id domain.MessageID) []byte {
	return []byte(messageIndexPrefix + id.String())
}

// StoreMessage persists the row and its id index in a single transaction.
func (m MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := messageKey(message.RoomID, PositionOf(message))
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, encodeMessage(message)); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
}

// GetMessage resolves the id index then reads the row.
func (m MessageRepository) GetMessage(ctx context.Context, id domain.MessageID) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, _, err = getMessage(txn, id)
		return err
	})
	return message, err
}

// SoftDeleteMessage checks ownership and applies the tombstone in one read-modify-write.
// Re-applying it on an already deleted message succeeds for the owner.
func (m MessageRepository) SoftDeleteMessage(ctx context.Context, id domain.MessageID,
	requester domain.UserID, at time.Time) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var deleted domain.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		message, key, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if message.AuthorID != requester {
			return fmt.Errorf("%w: message %s belongs to another user", errors.ErrForbidden, id)
		}
		deleted = message.SoftDelete(at.UTC())
		return txn.Set(key, encodeMessage(deleted))
	})
	if err != nil {
		return domain.Message{}, err
	}
	return deleted, nil
}

func getMessage(txn *badger.Txn, id domain.MessageID) (domain.Message, []byte, error) {
	idx, err := txn.Get(messageIndexKey(id))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, nil, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
	}
	if err != nil {
		return domain.Message{}, nil, err
	}
	key, err := idx.ValueCopy(nil)
	if err != nil {
		return domain.Message{}, nil, err
	}
	item, err := txn.Get(key)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, nil, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
	}
	if err != nil {
		return domain.Message{}, nil, err
	}
	var message domain.Message
	err = item.Value(func(value []byte) error {
		message, err = decodeMessage(value)
		return err
	})
	return message, key, err
}

// ListPage retrieves up to limit messages of a room using a reverse prefix scan,
// starting strictly after the given position, or from the newest one when after is nil.
// One extra row is read to tell whether older messages remain.
func (m MessageRepository) ListPage(ctx context.Context, room domain.RoomID, after *Position, limit int) (domain.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawPage{}, err
	}
	if limit <= 0 {
		return domain.RawPage{}, fmt.Errorf("%w: limit must be positive, got %d", errors.ErrInvalidArgument, limit)
	}
	var page domain.RawPage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := roomMessagesPrefix(room)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch after {
		case nil:
			seekKey = append(prefix, seekNewest...)
		default:
			seekKey = messageKey(room, *after)
		}

		it.Seek(seekKey)
		// Reverse seek lands on the greatest key <= seekKey: the cursor row itself is excluded.
		if after != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(page.Messages) == limit {
				page.HasMore = true
				break
			}
			err := it.Item().Value(func(value []byte) error {
				message, err := decodeMessage(value)
				if err != nil {
					return err
				}
				page.Messages = append(page.Messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.RawPage{}, err
	}
	m.log.Debug("Page scanned", "room_id", room, "count", len(page.Messages), "has_more", page.HasMore)
	return page, nil
}

func encodeMessage(message domain.Message) []byte {
	var w recordWriter
	w.string(1, message.ID.String())
	w.string(2, string(message.RoomID))
	w.string(3, string(message.AuthorID))
	w.string(4, message.Body)
	w.int64(5, message.CreatedAt.UnixNano())
	if message.UpdatedAt != nil {
		w.int64(6, message.UpdatedAt.UnixNano())
	}
	w.bool(7, message.IsDeleted)
	w.bool(8, message.IsEdited)
	return w.b
}

func decodeMessage(b []byte) (domain.Message, error) {
	var (
		id, room, author, body string
		createdAt, updatedAt   int64
		isDeleted, isEdited    bool
	)
	err := recordFields{
		strings: map[protowire.Number]*string{1: &id, 2: &room, 3: &author, 4: &body},
		ints:    map[protowire.Number]*int64{5: &createdAt, 6: &updatedAt},
		bools:   map[protowire.Number]*bool{7: &isDeleted, 8: &isEdited},
	}.decode(b)
	if err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: message id: %v", errors.ErrCorrupted, err)
	}
	message := domain.Message{
		ID:        parsedID,
		RoomID:    domain.RoomID(room),
		AuthorID:  domain.UserID(author),
		Body:      body,
		CreatedAt: time.Unix(0, createdAt).UTC(),
		IsDeleted: isDeleted,
		IsEdited:  isEdited,
	}
	if updatedAt != 0 {
		at := time.Unix(0, updatedAt).UTC()
		message.UpdatedAt = &at
	}
	return message, nil
}

// DecodeMessage exposes the record decoder to offline inspection tools.
func DecodeMessage(b []byte) (domain.Message, error) {
	return decodeMessage(b)
}
