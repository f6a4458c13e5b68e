package repositories

import (
	"chat-feed/domain"
	"chat-feed/errors"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t), slog.Default())

	id, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	req.NoError(err)
	req.NotEmpty(id)

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("Alice", byEmail.Name)
	req.Equal("hash", byEmail.PasswordHash)
	req.Equal([]string{"user"}, byEmail.Roles)

	byID, err := repo.GetUser(ctx, id)
	req.NoError(err)
	req.Equal(byEmail, byID)

	// A second account with the same email is refused
	_, err = repo.CreateUser(ctx, "alice@example.com", "Other", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_GetUsersByIDs_Skips_Unknown(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t), slog.Default())
	alice, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	req.NoError(err)
	bob, err := repo.CreateUser(ctx, "bob@example.com", "Bob", "hash")
	req.NoError(err)

	users, err := repo.GetUsersByIDs(ctx, []domain.UserID{alice, bob, "ghost"})
	req.NoError(err)
	req.Len(users, 2)
	req.Equal("Alice", users[alice].Name)
	req.Equal("Bob", users[bob].Name)
	req.NotContains(users, domain.UserID("ghost"))
}
