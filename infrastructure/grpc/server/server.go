package server

import (
	"chat-feed/auth"
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/services"
	"log/slog"

	grpclog "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
)

// PublicMethods are reachable without a token.
var PublicMethods = []string{v1.AuthService_Login_FullMethodName, v1.AuthService_Register_FullMethodName}

// New builds the gRPC server exposing both services behind the auth interceptor.
// Unary calls are logged before authentication so rejected calls show up too.
func New(log *slog.Logger, interceptor *auth.Interceptor, chat services.IChatService, authService services.IAuthService,
	opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			grpclog.UnaryLoggingInterceptor(log),
			interceptor.Unary(),
		),
		grpc.StreamInterceptor(interceptor.Stream()),
	)
	s := grpc.NewServer(opts...)
	v1.RegisterChatServiceServer(s, NewChatServer(log, chat))
	v1.RegisterAuthServiceServer(s, NewAuthServer(authService))
	return s
}
