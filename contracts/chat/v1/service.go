package v1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ChatService_GetMessages_FullMethodName    = "/chatfeed.v1.ChatService/GetMessages"
	ChatService_SendMessage_FullMethodName    = "/chatfeed.v1.ChatService/SendMessage"
	ChatService_DeleteMessage_FullMethodName  = "/chatfeed.v1.ChatService/DeleteMessage"
	ChatService_GetCurrentUser_FullMethodName = "/chatfeed.v1.ChatService/GetCurrentUser"
	ChatService_GetUser_FullMethodName        = "/chatfeed.v1.ChatService/GetUser"
	ChatService_GetRooms_FullMethodName       = "/chatfeed.v1.ChatService/GetRooms"
	ChatService_EnsureRoom_FullMethodName     = "/chatfeed.v1.ChatService/EnsureRoom"
	ChatService_Subscribe_FullMethodName      = "/chatfeed.v1.ChatService/Subscribe"

	AuthService_Register_FullMethodName = "/chatfeed.v1.AuthService/Register"
	AuthService_Login_FullMethodName    = "/chatfeed.v1.AuthService/Login"
)

type ChatService_SubscribeServer = grpc.ServerStreamingServer[Snapshot]

type ChatService_SubscribeClient = grpc.ServerStreamingClient[Snapshot]

type ChatServiceServer interface {
	GetMessages(context.Context, *GetMessagesRequest) (*GetMessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	DeleteMessage(context.Context, *DeleteMessageRequest) (*DeleteMessageResponse, error)
	GetCurrentUser(context.Context, *GetCurrentUserRequest) (*GetCurrentUserResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
	GetRooms(context.Context, *GetRoomsRequest) (*GetRoomsResponse, error)
	EnsureRoom(context.Context, *EnsureRoomRequest) (*EnsureRoomResponse, error)
	Subscribe(*SubscribeRequest, ChatService_SubscribeServer) error
}

type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
}

// unary builds the method handler a generated descriptor would contain.
func unary[S, Req, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatServiceServer).Subscribe(in, &grpc.GenericServerStream[SubscribeRequest, Snapshot]{ServerStream: stream})
}

var ChatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "chatfeed.v1.ChatService",
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMessages", Handler: unary(ChatService_GetMessages_FullMethodName, ChatServiceServer.GetMessages)},
		{MethodName: "SendMessage", Handler: unary(ChatService_SendMessage_FullMethodName, ChatServiceServer.SendMessage)},
		{MethodName: "DeleteMessage", Handler: unary(ChatService_DeleteMessage_FullMethodName, ChatServiceServer.DeleteMessage)},
		{MethodName: "GetCurrentUser", Handler: unary(ChatService_GetCurrentUser_FullMethodName, ChatServiceServer.GetCurrentUser)},
		{MethodName: "GetUser", Handler: unary(ChatService_GetUser_FullMethodName, ChatServiceServer.GetUser)},
		{MethodName: "GetRooms", Handler: unary(ChatService_GetRooms_FullMethodName, ChatServiceServer.GetRooms)},
		{MethodName: "EnsureRoom", Handler: unary(ChatService_EnsureRoom_FullMethodName, ChatServiceServer.EnsureRoom)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "chatfeed/v1/chat.proto",
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "chatfeed.v1.AuthService",
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(AuthService_Register_FullMethodName, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unary(AuthService_Login_FullMethodName, AuthServiceServer.Login)},
	},
	Metadata: "chatfeed/v1/auth.proto",
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatService_ServiceDesc, srv)
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}
