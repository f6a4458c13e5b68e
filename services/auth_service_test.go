package services

import (
	"chat-feed/auth"
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T) (IAuthService, *mocks.MockIUserRepository, *auth.TokenManager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("auth-service-test-secret-0123456789", 24*time.Hour)
	return NewAuthService(logs.GetLoggerFromLevel(slog.LevelDebug), mockRepo, tokens), mockRepo, tokens
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		svc, mockRepo, tokens := newAuthService(t)
		password := "ComplexPass123!"

		// CreateUser receives a hash, never the plain password
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "test@example.com", "Test", gomock.Not(password)).
			Return(domain.UserID("user-uuid"), nil).
			Times(1)

		session, err := svc.Register(ctx, "  Test@Example.com ", password, "Test")

		req.NoError(err)
		req.Equal(domain.UserID("user-uuid"), session.UserID)
		claims, err := tokens.ValidateToken(session.Token)
		req.NoError(err)
		req.Equal("user-uuid", claims.UserID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		svc, mockRepo, _ := newAuthService(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register(ctx, "test@example.com", "simplesimplesimple", "Test")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(session.Token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		svc, mockRepo, _ := newAuthService(t)

		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "duplicate@example.com", "Dup", gomock.Any()).
			Return(domain.UserID(""), errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(ctx, "duplicate@example.com", "ComplexPass123!", "Dup")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		svc, mockRepo, tokens := newAuthService(t)
		password := "Secret123456!"
		hashedPassword, err := auth.HashPassword(password)
		req.NoError(err)
		storedUser := domain.User{ID: "uuid-123", Email: "user@example.com", PasswordHash: hashedPassword, Roles: []string{"user"}}

		mockRepo.EXPECT().
			GetUserByEmail(gomock.Any(), "user@example.com").
			Return(storedUser, nil).
			Times(1)

		session, err := svc.Login(ctx, "user@example.com", password)

		req.NoError(err)
		claims, err := tokens.ValidateToken(session.Token)
		req.NoError(err)
		req.Equal(string(storedUser.ID), claims.UserID)
		req.Equal([]string{"user"}, claims.Roles)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		svc, mockRepo, _ := newAuthService(t)
		hashedPassword, err := auth.HashPassword("CorrectPassword123!")
		req.NoError(err)

		mockRepo.EXPECT().
			GetUserByEmail(gomock.Any(), "user@example.com").
			Return(domain.User{Email: "user@example.com", PasswordHash: hashedPassword}, nil).
			Times(1)

		_, err = svc.Login(ctx, "user@example.com", "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)
		svc, mockRepo, _ := newAuthService(t)

		mockRepo.EXPECT().
			GetUserByEmail(gomock.Any(), "unknown@example.com").
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		_, err := svc.Login(ctx, "unknown@example.com", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
