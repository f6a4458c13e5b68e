package ws_test

import (
	"chat-feed/auth"
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/contract"
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/infrastructure/ws"
	"chat-feed/mocks"
	"chat-feed/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeChat struct {
	services.IChatService
	subscription contract.Subscription
	err          error
	commands     chan domain.SubscribeCommand
	users        chan domain.UserID
}

func (f *fakeChat) Subscribe(ctx context.Context, cmd domain.SubscribeCommand) (contract.Subscription, error) {
	userID, _ := auth.UserIDFromContext(ctx)
	f.commands <- cmd
	f.users <- userID
	return f.subscription, f.err
}

type gatewayFixture struct {
	server *httptest.Server
	chat   *fakeChat
	token  string
}

func newGatewayFixture(t *testing.T, subscription contract.Subscription, subscribeErr error) gatewayFixture {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.GenerateToken("alice", []string{"user"})
	require.NoError(t, err)

	chat := &fakeChat{
		subscription: subscription,
		err:          subscribeErr,
		commands:     make(chan domain.SubscribeCommand, 1),
		users:        make(chan domain.UserID, 1),
	}
	gateway := ws.NewGateway(logs.GetLoggerFromLevel(slog.LevelError), chat, auth.NewInterceptor(tokens), 4096, 20)
	server := httptest.NewServer(gateway)
	t.Cleanup(server.Close)
	return gatewayFixture{server: server, chat: chat, token: token}
}

func (f gatewayFixture) url(query string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?" + query
}

// blockingSubscription yields one snapshot then waits for the peer to leave.
func blockingSubscription(ctrl *gomock.Controller, snapshot domain.Snapshot) *mocks.MockSubscription {
	subscription := mocks.NewMockSubscription(ctrl)
	subscription.EXPECT().ID().Return("sub-1").AnyTimes()
	subscription.EXPECT().Close().AnyTimes()
	subscription.EXPECT().Next(gomock.Any()).Return(snapshot, nil).Times(1)
	subscription.EXPECT().Next(gomock.Any()).DoAndReturn(func(ctx context.Context) (domain.Snapshot, error) {
		<-ctx.Done()
		return domain.Snapshot{}, ctx.Err()
	}).AnyTimes()
	return subscription
}

func TestGateway_Pushes_Snapshots_As_Json_Frames(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	id := uuid.Must(uuid.NewV7())
	snapshot := domain.Snapshot{
		Room:     "general",
		Version:  3,
		PageSize: 20,
		Page: domain.Page{Items: []domain.FeedItem{{
			Message: domain.Message{ID: id, RoomID: "general", AuthorID: "alice", Body: "hi", CreatedAt: time.Now().UTC()},
			Author:  domain.Author{ID: "alice", Name: "Alice"},
		}}},
	}
	f := newGatewayFixture(t, blockingSubscription(ctrl, snapshot), nil)

	// When a client connects with a bearer header and no page size
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, f.url("room=general"), &websocket.DialOptions{
		Subprotocols: []string{ws.Subprotocol},
		HTTPHeader:   http.Header{"Authorization": {"Bearer " + f.token}},
	})
	req.NoError(err)
	defer func() { _ = conn.CloseNow() }()

	// Then the subscription uses the caller identity and the default page size
	req.Equal(domain.SubscribeCommand{Room: "general", PageSize: 20}, <-f.chat.commands)
	req.Equal(domain.UserID("alice"), <-f.chat.users)

	// And the snapshot arrives as a text frame
	typ, data, err := conn.Read(ctx)
	req.NoError(err)
	req.Equal(websocket.MessageText, typ)
	var got v1.Snapshot
	req.NoError(json.Unmarshal(data, &got))
	req.Equal("sub-1", got.SubscriptionID)
	req.Equal(uint64(3), got.Version)
	req.Len(got.Items, 1)
	req.Equal("hi", got.Items[0].Message.Body)
	req.Equal("Alice", got.Items[0].Author.Name)

	req.NoError(conn.Close(websocket.StatusNormalClosure, "bye"))
}

func TestGateway_Accepts_A_Token_Query_Parameter(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newGatewayFixture(t, blockingSubscription(ctrl, domain.Snapshot{Room: "general", Version: 1}), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, f.url(fmt.Sprintf("room=general&page_size=5&token=%s", f.token)),
		&websocket.DialOptions{Subprotocols: []string{ws.Subprotocol}})
	req.NoError(err)
	defer func() { _ = conn.CloseNow() }()

	req.Equal(domain.SubscribeCommand{Room: "general", PageSize: 5}, <-f.chat.commands)
	_, _, err = conn.Read(ctx)
	req.NoError(err)
}

func TestGateway_Rejects_Before_Upgrade(t *testing.T) {
	tests := []struct {
		name         string
		query        func(token string) string
		subscribeErr error
		want         int
	}{
		{
			name:  "missing token",
			query: func(string) string { return "room=general" },
			want:  http.StatusUnauthorized,
		},
		{
			name:  "bad page size",
			query: func(token string) string { return "room=general&page_size=ten&token=" + token },
			want:  http.StatusBadRequest,
		},
		{
			name:         "unknown room",
			query:        func(token string) string { return "room=nowhere&token=" + token },
			subscribeErr: fmt.Errorf("%w: nowhere", errors.ErrRoomNotFound),
			want:         http.StatusNotFound,
		},
		{
			name:         "non positive page size",
			query:        func(token string) string { return "room=general&page_size=0&token=" + token },
			subscribeErr: fmt.Errorf("%w: page size", errors.ErrInvalidArgument),
			want:         http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			f := newGatewayFixture(t, nil, tt.subscribeErr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, resp, err := websocket.Dial(ctx, f.url(tt.query(f.token)), &websocket.DialOptions{Subprotocols: []string{ws.Subprotocol}})

			req.Error(err)
			req.NotNil(resp)
			req.Equal(tt.want, resp.StatusCode)
		})
	}
}
