package server

import (
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/errors"
	"chat-feed/services"
	"context"
)

type AuthServer struct {
	authService services.IAuthService
}

// NewAuthServer creates a new gRPC server for authentication.
func NewAuthServer(authService services.IAuthService) *AuthServer {
	return &AuthServer{authService: authService}
}

// Register validates input, hashes the password and issues a token.
func (s *AuthServer) Register(ctx context.Context, in *v1.RegisterRequest) (*v1.RegisterResponse, error) {
	session, err := s.authService.Register(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &v1.RegisterResponse{Token: session.Token, UserID: string(session.UserID)}, nil
}

// Login verifies credentials and returns a session token.
func (s *AuthServer) Login(ctx context.Context, in *v1.LoginRequest) (*v1.LoginResponse, error) {
	session, err := s.authService.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &v1.LoginResponse{Token: session.Token, UserID: string(session.UserID)}, nil
}
