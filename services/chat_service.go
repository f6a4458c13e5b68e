package services

import (
	"chat-feed/auth"
	"chat-feed/contract"
	"chat-feed/domain"
	"chat-feed/domain/event"
	"chat-feed/errors"
	"chat-feed/observability"
	"chat-feed/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type IChatService interface {
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	DeleteMessage(ctx context.Context, id domain.MessageID) error
	GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) (domain.Page, error)
	GetCurrentUser(ctx context.Context) (*domain.User, error)
	GetUser(ctx context.Context, id domain.UserID) (domain.User, error)
	GetRooms(ctx context.Context, limit int) ([]domain.Room, error)
	EnsureRoom(ctx context.Context, name, description string) (domain.Room, error)
	Subscribe(ctx context.Context, cmd domain.SubscribeCommand) (contract.Subscription, error)
}

// Censor masks forbidden words and reports the ones found.
type Censor interface {
	Censor(text string) (string, []string)
}

type ChatService struct {
	log              *slog.Logger
	messages         repositories.IMessageRepository
	rooms            repositories.IRoomRepository
	users            repositories.IUserRepository
	pages            contract.FirstPageLoader
	live             contract.ILiveFeed
	censor           Censor
	metrics          *observability.FeedMetrics
	maxContentLength int
	now              func() time.Time
}

func NewChatService(log *slog.Logger, messages repositories.IMessageRepository, rooms repositories.IRoomRepository,
	users repositories.IUserRepository, pages contract.FirstPageLoader, live contract.ILiveFeed,
	censor Censor, metrics *observability.FeedMetrics, maxContentLength int) *ChatService {
	return &ChatService{
		log:              log,
		messages:         messages,
		rooms:            rooms,
		users:            users,
		pages:            pages,
		live:             live,
		censor:           censor,
		metrics:          metrics,
		maxContentLength: maxContentLength,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage inserts exactly one message and invalidates the room live views.
// It returns after the commit, so a following read observes the message.
func (s *ChatService) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return domain.Message{}, errors.ErrUnauthenticated
	}
	cmd.Body = strings.TrimSpace(cmd.Body)
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	if s.maxContentLength > 0 && utf8.RuneCountInString(cmd.Body) > s.maxContentLength {
		return domain.Message{}, fmt.Errorf("%w: body exceeds %d characters", errors.ErrInvalidArgument, s.maxContentLength)
	}
	if err := s.requireRoom(ctx, cmd.Room); err != nil {
		return domain.Message{}, err
	}

	body := cmd.Body
	if s.censor != nil {
		var words []string
		if body, words = s.censor.Censor(body); len(words) > 0 {
			s.log.Debug("Message censored", "room_id", cmd.Room, "user_id", userID, "words", len(words))
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:        id,
		RoomID:    cmd.Room,
		AuthorID:  userID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.messages.StoreMessage(ctx, message); err != nil {
		return domain.Message{}, err
	}
	s.metrics.MessagesSent.Inc()
	s.live.Publish(event.Invalidation{Room: message.RoomID, MessageID: message.ID, Cause: event.CauseSent, At: message.CreatedAt})
	s.log.Debug("Message sent", "room_id", message.RoomID, "message_id", message.ID, "user_id", userID)
	return message, nil
}

// DeleteMessage soft-deletes a message of the current user.
func (s *ChatService) DeleteMessage(ctx context.Context, id domain.MessageID) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return errors.ErrUnauthenticated
	}
	deleted, err := s.messages.SoftDeleteMessage(ctx, id, userID, s.now())
	if err != nil {
		return err
	}
	s.metrics.MessagesDeleted.Inc()
	s.live.Publish(event.Invalidation{Room: deleted.RoomID, MessageID: deleted.ID, Cause: event.CauseDeleted, At: s.now()})
	s.log.Debug("Message deleted", "room_id", deleted.RoomID, "message_id", deleted.ID, "user_id", userID)
	return nil
}

func (s *ChatService) GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) (domain.Page, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Page{}, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	if err := s.requireRoom(ctx, cmd.Room); err != nil {
		return domain.Page{}, err
	}
	page, err := s.pages.Page(ctx, cmd.Room, cmd.Cursor, cmd.PageSize)
	if err != nil {
		return domain.Page{}, err
	}
	s.metrics.PagesServed.Inc()
	return page, nil
}

// GetCurrentUser returns nil without error for an anonymous or unknown caller.
func (s *ChatService) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, nil
	}
	user, err := s.users.GetUser(ctx, userID)
	if goerrors.Is(err, errors.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &user, nil
}

// GetUser returns the public profile of a participant: no email, no password hash.
func (s *ChatService) GetUser(ctx context.Context, id domain.UserID) (domain.User, error) {
	if _, ok := auth.UserIDFromContext(ctx); !ok {
		return domain.User{}, errors.ErrUnauthenticated
	}
	if id == "" {
		return domain.User{}, fmt.Errorf("%w: user id is required", errors.ErrInvalidArgument)
	}
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	user.Email = ""
	user.PasswordHash = ""
	return user, nil
}

func (s *ChatService) GetRooms(ctx context.Context, limit int) ([]domain.Room, error) {
	return s.rooms.ListRooms(ctx, limit)
}

// EnsureRoom returns the room with that name, creating it on behalf of the current user.
func (s *ChatService) EnsureRoom(ctx context.Context, name, description string) (domain.Room, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return domain.Room{}, errors.ErrUnauthenticated
	}
	return s.rooms.EnsureRoom(ctx, strings.TrimSpace(name), description, userID)
}

// Subscribe registers a live view on the first page of a room.
// The returned subscription receives an initial snapshot without waiting for a write.
func (s *ChatService) Subscribe(ctx context.Context, cmd domain.SubscribeCommand) (contract.Subscription, error) {
	if _, ok := auth.UserIDFromContext(ctx); !ok {
		return nil, errors.ErrUnauthenticated
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err)
	}
	if err := s.requireRoom(ctx, cmd.Room); err != nil {
		return nil, err
	}
	return s.live.Subscribe(cmd.Room, cmd.PageSize), nil
}

func (s *ChatService) requireRoom(ctx context.Context, room domain.RoomID) error {
	if !room.Valid() {
		return fmt.Errorf("%w: invalid room id %q", errors.ErrInvalidArgument, room)
	}
	exists, err := s.rooms.RoomExists(ctx, room)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", errors.ErrRoomNotFound, room)
	}
	return nil
}
