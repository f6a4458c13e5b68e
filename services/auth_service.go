package services

import (
	"chat-feed/auth"
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"
)

type IAuthService interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Register(ctx context.Context, email, password, name string) (Session, error)
}

// Session is what a client keeps after registering or logging in.
type Session struct {
	UserID domain.UserID
	Token  string
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	// Business rules are checked before any expensive cryptographic operation
	if err := auth.ValidateRegister(auth.RegisterRequest{Email: email, Password: password, Name: name}); err != nil {
		return Session{}, err
	}

	// The repository never sees plain passwords
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(ctx, email, name, hashedPassword)
	if err != nil {
		return Session{}, err // ErrUserAlreadyExists if email is taken
	}
	s.log.Info("User registered", "user_id", userID)

	token, err := s.tokens.GenerateToken(userID, []string{"user"})
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: userID, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !goerrors.Is(err, errors.ErrUserNotFound) {
			s.log.Error("User lookup failed", "error", err)
		}
		// Same error either way to prevent user enumeration
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: user.ID, Token: token}, nil
}
