package server

import (
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/services"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ChatServer struct {
	chatService services.IChatService
	log         *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService) *ChatServer {
	return &ChatServer{chatService: chatService, log: log}
}

func (s *ChatServer) GetMessages(ctx context.Context, req *v1.GetMessagesRequest) (*v1.GetMessagesResponse, error) {
	page, err := s.chatService.GetMessages(ctx, domain.GetMessagesCommand{
		Room:     domain.RoomID(req.RoomID),
		Cursor:   req.Cursor,
		PageSize: int(req.PageSize),
	})
	if err != nil {
		return nil, s.mapError(err, "GetMessages")
	}
	return v1.FromPage(page), nil
}

// SendMessage returns once the message is committed.
// Live subscribers, the sender included, receive it through their next snapshot.
func (s *ChatServer) SendMessage(ctx context.Context, req *v1.SendMessageRequest) (*v1.SendMessageResponse, error) {
	message, err := s.chatService.SendMessage(ctx, domain.SendMessageCommand{
		Room: domain.RoomID(req.RoomID),
		Body: req.Body,
	})
	if err != nil {
		return nil, s.mapError(err, "SendMessage")
	}
	return &v1.SendMessageResponse{MessageID: message.ID.String()}, nil
}

func (s *ChatServer) DeleteMessage(ctx context.Context, req *v1.DeleteMessageRequest) (*v1.DeleteMessageResponse, error) {
	id, err := uuid.Parse(req.MessageID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed message id")
	}
	if err := s.chatService.DeleteMessage(ctx, id); err != nil {
		return nil, s.mapError(err, "DeleteMessage")
	}
	return &v1.DeleteMessageResponse{}, nil
}

func (s *ChatServer) GetCurrentUser(ctx context.Context, _ *v1.GetCurrentUserRequest) (*v1.GetCurrentUserResponse, error) {
	user, err := s.chatService.GetCurrentUser(ctx)
	if err != nil {
		return nil, s.mapError(err, "GetCurrentUser")
	}
	if user == nil {
		return &v1.GetCurrentUserResponse{}, nil
	}
	return &v1.GetCurrentUserResponse{User: v1.FromUser(*user)}, nil
}

func (s *ChatServer) GetUser(ctx context.Context, req *v1.GetUserRequest) (*v1.GetUserResponse, error) {
	user, err := s.chatService.GetUser(ctx, domain.UserID(req.UserID))
	if err != nil {
		return nil, s.mapError(err, "GetUser")
	}
	return &v1.GetUserResponse{User: *v1.FromUser(user)}, nil
}

func (s *ChatServer) GetRooms(ctx context.Context, req *v1.GetRoomsRequest) (*v1.GetRoomsResponse, error) {
	rooms, err := s.chatService.GetRooms(ctx, int(req.Limit))
	if err != nil {
		return nil, s.mapError(err, "GetRooms")
	}
	return &v1.GetRoomsResponse{Rooms: lo.Map(rooms, func(r domain.Room, _ int) v1.Room { return v1.FromRoom(r) })}, nil
}

func (s *ChatServer) EnsureRoom(ctx context.Context, req *v1.EnsureRoomRequest) (*v1.EnsureRoomResponse, error) {
	room, err := s.chatService.EnsureRoom(ctx, req.Name, req.Description)
	if err != nil {
		return nil, s.mapError(err, "EnsureRoom")
	}
	return &v1.EnsureRoomResponse{RoomID: string(room.ID)}, nil
}

// Subscribe streams the first page of a room, one message per snapshot.
// It blocks until the client goes away; the subscription is always released.
func (s *ChatServer) Subscribe(req *v1.SubscribeRequest, stream v1.ChatService_SubscribeServer) error {
	ctx := stream.Context()
	subscription, err := s.chatService.Subscribe(ctx, domain.SubscribeCommand{
		Room:     domain.RoomID(req.RoomID),
		PageSize: int(req.PageSize),
	})
	if err != nil {
		return s.mapError(err, "Subscribe")
	}
	defer subscription.Close()

	for {
		snapshot, err := subscription.Next(ctx)
		switch {
		case ctx.Err() != nil:
			s.log.Debug("Subscriber disconnected", "subscription_id", subscription.ID(), "room_id", req.RoomID)
			return nil
		case goerrors.Is(err, errors.ErrSinkClosed):
			return status.Error(codes.Unavailable, "subscription closed, resubscribe")
		case err != nil:
			return s.mapError(err, "Subscribe")
		}

		if err := stream.Send(v1.FromSnapshot(subscription.ID(), snapshot)); err != nil {
			s.log.Error("failed to push snapshot to stream",
				"subscription_id", subscription.ID(),
				"room_id", req.RoomID,
				"error", err)
			return err
		}
	}
}

// mapError logs what the client will only see as an internal error.
func (s *ChatServer) mapError(err error, method string) error {
	mapped := errors.MapToGRPCError(err)
	if status.Code(mapped) == codes.Internal {
		s.log.Error(fmt.Sprintf("%s failed", method), "error", err)
	}
	return mapped
}
