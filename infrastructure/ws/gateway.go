// Package ws pushes live feed snapshots to browsers over WebSocket.
package ws

import (
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/domain"
	"chat-feed/errors"
	"chat-feed/services"
	"context"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
)

const (
	Subprotocol  = "chatfeed.v1"
	writeTimeout = 5 * time.Second
)

// Authenticator turns a raw "Bearer <token>" value into an identified context.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (context.Context, error)
}

type Gateway struct {
	log             *slog.Logger
	chat            services.IChatService
	authn           Authenticator
	readLimit       int64
	defaultPageSize int
	originPatterns  []string
}

// NewGateway serves /ws?room=&page_size=. The connection is push-only:
// anything the peer sends other than control frames closes it.
func NewGateway(log *slog.Logger, chat services.IChatService, authn Authenticator,
	readLimit int64, defaultPageSize int, originPatterns ...string) *Gateway {
	return &Gateway{
		log:             log,
		chat:            chat,
		authn:           authn,
		readLimit:       readLimit,
		defaultPageSize: defaultPageSize,
		originPatterns:  originPatterns,
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" {
		// Browsers cannot set headers on a WebSocket handshake
		header = r.URL.Query().Get("token")
	}
	ctx, err := g.authn.Authenticate(r.Context(), header)
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	pageSize := g.defaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if pageSize, err = strconv.Atoi(raw); err != nil {
			http.Error(w, "page_size must be an integer", http.StatusBadRequest)
			return
		}
	}
	room := domain.RoomID(r.URL.Query().Get("room"))

	// Subscribing before the upgrade lets a bad request fail with a plain HTTP status
	subscription, err := g.chat.Subscribe(ctx, domain.SubscribeCommand{Room: room, PageSize: pageSize})
	if err != nil {
		code := httpStatus(err)
		if code == http.StatusInternalServerError {
			g.log.Error("Subscribe failed", "room_id", room, "error", err)
			http.Error(w, "internal error", code)
			return
		}
		http.Error(w, err.Error(), code)
		return
	}
	defer subscription.Close()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Error("WebSocket accept failed", "room_id", room, "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	if sp := conn.Subprotocol(); sp != Subprotocol {
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}
	if g.readLimit > 0 {
		conn.SetReadLimit(g.readLimit)
	}
	ctx = conn.CloseRead(ctx)

	log := g.log.With("subscription_id", subscription.ID(), "room_id", room)
	log.Debug("WebSocket subscriber connected", "page_size", pageSize)
	for {
		snapshot, err := subscription.Next(ctx)
		switch {
		case ctx.Err() != nil:
			log.Debug("WebSocket subscriber disconnected")
			return
		case goerrors.Is(err, errors.ErrSinkClosed):
			_ = conn.Close(websocket.StatusGoingAway, "subscription closed, resubscribe")
			return
		case err != nil:
			log.Error("Snapshot wait failed", "error", err)
			_ = conn.Close(websocket.StatusInternalError, "internal error")
			return
		}
		if err := write(ctx, conn, v1.FromSnapshot(subscription.ID(), snapshot)); err != nil {
			log.Info("WebSocket write failed", "close_status", websocket.CloseStatus(err), "error", err)
			return
		}
	}
}

func write(parent context.Context, conn *websocket.Conn, snapshot *v1.Snapshot) error {
	ctx, cancel := context.WithTimeout(parent, writeTimeout)
	defer cancel()

	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}

func httpStatus(err error) int {
	switch {
	case goerrors.Is(err, errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case goerrors.Is(err, errors.ErrInvalidArgument):
		return http.StatusBadRequest
	case goerrors.Is(err, errors.ErrRoomNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
