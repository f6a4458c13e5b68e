//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	userPrefix         = "user:"
	userEmailIdxPrefix = "idx:user:email:"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, email, name, hashedPassword string) (domain.UserID, error)
	GetUser(ctx context.Context, id domain.UserID) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.User, error)
}

type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) IUserRepository {
	return &UserRepository{db: db, log: log}
}

// CreateUser persists the user and its email index.
// It returns the newly generated User ID.
func (u UserRepository) CreateUser(ctx context.Context, email, name, hashedPassword string) (domain.UserID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user := domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}
	err := u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailIdxPrefix + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set([]byte(userPrefix+string(user.ID)), encodeUser(user)); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u UserRepository) GetUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailIdxPrefix + email))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", errors.ErrUserNotFound, email)
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, domain.UserID(id))
		return err
	})
	return user, err
}

// GetUsersByIDs resolves a batch of users inside one read transaction.
// Unknown or unreadable users are left out of the result, the caller decides what to show instead.
func (u UserRepository) GetUsersByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users := make(map[domain.UserID]domain.User, len(ids))
	err := u.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			user, err := getUser(txn, id)
			switch {
			case err == nil:
				users[id] = user
			case goerrors.Is(err, errors.ErrUserNotFound):
			default:
				u.log.Warn("Skipping unreadable user", "user_id", id, "error", err)
			}
		}
		return nil
	})
	return users, err
}

func getUser(txn *badger.Txn, id domain.UserID) (domain.User, error) {
	item, err := txn.Get([]byte(userPrefix + string(id)))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, id)
	}
	if err != nil {
		return domain.User{}, err
	}
	var user domain.User
	err = item.Value(func(value []byte) error {
		user, err = decodeUser(value)
		return err
	})
	return user, err
}

func encodeUser(user domain.User) []byte {
	var w recordWriter
	w.string(1, string(user.ID))
	w.string(2, user.Email)
	w.string(3, user.Name)
	w.string(4, user.Image)
	w.string(5, user.PasswordHash)
	w.strings(6, user.Roles)
	w.int64(7, user.CreatedAt.Unix())
	return w.b
}

func decodeUser(b []byte) (domain.User, error) {
	var (
		id, email, name, image, hash string
		roles                        []string
		createdAt                    int64
	)
	err := recordFields{
		strings:  map[protowire.Number]*string{1: &id, 2: &email, 3: &name, 4: &image, 5: &hash},
		repeated: map[protowire.Number]*[]string{6: &roles},
		ints:     map[protowire.Number]*int64{7: &createdAt},
	}.decode(b)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           domain.UserID(id),
		Email:        email,
		Name:         name,
		Image:        image,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Unix(createdAt, 0).UTC(),
	}, nil
}
