// Package v1 is the wire contract of the chatfeed.v1 gRPC services.
// Messages travel as JSON through the codec registered by this package.
package v1

import "time"

type Author struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	IsAnonymous bool   `json:"is_anonymous,omitempty"`
}

type Message struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	AuthorID  string     `json:"author_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"is_deleted,omitempty"`
	IsEdited  bool       `json:"is_edited,omitempty"`
}

type FeedItem struct {
	Message Message `json:"message"`
	Author  Author  `json:"author"`
}

type GetMessagesRequest struct {
	RoomID   string  `json:"room_id"`
	Cursor   *string `json:"cursor,omitempty"`
	PageSize int32   `json:"page_size"`
}

type GetMessagesResponse struct {
	Items        []FeedItem `json:"items"`
	Continuation *string    `json:"continuation,omitempty"`
	HasMore      bool       `json:"has_more"`
}

type SendMessageRequest struct {
	RoomID string `json:"room_id"`
	Body   string `json:"body"`
}

type SendMessageResponse struct {
	MessageID string `json:"message_id"`
}

type DeleteMessageRequest struct {
	MessageID string `json:"message_id"`
}

type DeleteMessageResponse struct{}

type GetCurrentUserRequest struct{}

type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name"`
	Image string   `json:"image,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

type GetCurrentUserResponse struct {
	User *User `json:"user,omitempty"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type GetRoomsRequest struct {
	Limit int32 `json:"limit,omitempty"`
}

type GetRoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

type EnsureRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type EnsureRoomResponse struct {
	RoomID string `json:"room_id"`
}

type SubscribeRequest struct {
	RoomID   string `json:"room_id"`
	PageSize int32  `json:"page_size"`
}

// Snapshot is one push of a live view: the whole first page of the room.
type Snapshot struct {
	SubscriptionID string     `json:"subscription_id,omitempty"`
	RoomID         string     `json:"room_id"`
	Version        uint64     `json:"version"`
	PageSize       int32      `json:"page_size"`
	Items          []FeedItem `json:"items"`
	Continuation   *string    `json:"continuation,omitempty"`
	HasMore        bool       `json:"has_more"`
	At             time.Time  `json:"at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}
