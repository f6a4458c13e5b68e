//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	roomPrefix            = "room:"
	roomNameIndexPrefix   = "idx:room:name:"
	roomCreatedIdxPrefix  = "idx:room:created:"
	defaultRoomsListLimit = 100
)

// IRoomRepository is the room directory consumed by the feed.
type IRoomRepository interface {
	RoomExists(ctx context.Context, id domain.RoomID) (bool, error)
	GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error)
	EnsureRoom(ctx context.Context, name, description string, createdBy domain.UserID) (domain.Room, error)
	ListRooms(ctx context.Context, limit int) ([]domain.Room, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) RoomRepository {
	return RoomRepository{db: db}
}

func (r RoomRepository) RoomExists(ctx context.Context, id domain.RoomID) (bool, error) {
	_, err := r.GetRoom(ctx, id)
	if goerrors.Is(err, errors.ErrRoomNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r RoomRepository) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	if !id.Valid() {
		return domain.Room{}, fmt.Errorf("%w: %q", errors.ErrRoomNotFound, id)
	}
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		room, err = getRoom(txn, id)
		return err
	})
	return room, err
}

// EnsureRoom returns the room named name, creating it when it does not exist yet.
// Names are unique: the name index and the row are written in the same transaction.
func (r RoomRepository) EnsureRoom(ctx context.Context, name, description string, createdBy domain.UserID) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	if name == "" {
		return domain.Room{}, fmt.Errorf("%w: room name is required", errors.ErrInvalidArgument)
	}
	var room domain.Room
	err := r.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte(roomNameIndexPrefix + name)
		item, err := txn.Get(nameKey)
		switch {
		case err == nil:
			id, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			room, err = getRoom(txn, domain.RoomID(id))
			return err
		case !goerrors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		room = domain.Room{
			ID:          domain.RoomID(uuid.NewString()),
			Name:        name,
			Description: description,
			CreatedBy:   createdBy,
			CreatedAt:   time.Now().UTC(),
		}
		if err = txn.Set([]byte(roomPrefix+string(room.ID)), encodeRoom(room)); err != nil {
			return err
		}
		createdKey := fmt.Sprintf("%s%019d:%s", roomCreatedIdxPrefix, room.CreatedAt.UnixNano(), room.ID)
		if err = txn.Set([]byte(createdKey), []byte(room.ID)); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(room.ID))
	})
	return room, err
}

// ListRooms returns the newest rooms first.
func (r RoomRepository) ListRooms(ctx context.Context, limit int) ([]domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRoomsListLimit
	}
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(roomCreatedIdxPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, seekNewest...)); it.ValidForPrefix(prefix) && len(rooms) < limit; it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			room, err := getRoom(txn, domain.RoomID(id))
			if err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	return rooms, err
}

func getRoom(txn *badger.Txn, id domain.RoomID) (domain.Room, error) {
	item, err := txn.Get([]byte(roomPrefix + string(id)))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Room{}, fmt.Errorf("%w: %s", errors.ErrRoomNotFound, id)
	}
	if err != nil {
		return domain.Room{}, err
	}
	var room domain.Room
	err = item.Value(func(value []byte) error {
		room, err = decodeRoom(value)
		return err
	})
	return room, err
}

func encodeRoom(room domain.Room) []byte {
	var w recordWriter
	w.string(1, string(room.ID))
	w.string(2, room.Name)
	w.string(3, room.Description)
	w.string(4, string(room.CreatedBy))
	w.int64(5, room.CreatedAt.UnixNano())
	w.bool(6, room.IsPrivate)
	return w.b
}

func decodeRoom(b []byte) (domain.Room, error) {
	var (
		id, name, description, createdBy string
		createdAt                        int64
		isPrivate                        bool
	)
	err := recordFields{
		strings: map[protowire.Number]*string{1: &id, 2: &name, 3: &description, 4: &createdBy},
		ints:    map[protowire.Number]*int64{5: &createdAt},
		bools:   map[protowire.Number]*bool{6: &isPrivate},
	}.decode(b)
	if err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		ID:          domain.RoomID(id),
		Name:        name,
		Description: description,
		CreatedBy:   domain.UserID(createdBy),
		CreatedAt:   time.Unix(0, createdAt).UTC(),
		IsPrivate:   isPrivate,
	}, nil
}
