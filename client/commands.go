package main

import (
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/domain"
	"chat-feed/projection"
	"context"
	"errors"
	"flag"
	"io"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// A command declares its flags then returns what to run once they are parsed.
type command func(flags *flag.FlagSet) func(ctx context.Context) error

func (a *app) commands() map[string]command {
	return map[string]command{
		"register": a.register,
		"login":    a.login,
		"rooms":    a.rooms,
		"send":     a.send,
		"delete":   a.delete,
		"history":  a.history,
		"watch":    a.watch,
		"user":     a.user,
	}
}

func (a *app) register(flags *flag.FlagSet) func(ctx context.Context) error {
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	name := flags.String("name", "", "display name")
	return func(ctx context.Context) error {
		resp, err := a.auth.Register(ctx, &v1.RegisterRequest{Email: *email, Password: *password, Name: *name})
		if err != nil {
			return err
		}
		a.out.token(resp.UserID, resp.Token)
		return nil
	}
}

func (a *app) login(flags *flag.FlagSet) func(ctx context.Context) error {
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	return func(ctx context.Context) error {
		resp, err := a.auth.Login(ctx, &v1.LoginRequest{Email: *email, Password: *password})
		if err != nil {
			return err
		}
		a.out.token(resp.UserID, resp.Token)
		return nil
	}
}

func (a *app) rooms(flags *flag.FlagSet) func(ctx context.Context) error {
	limit := flags.Int("limit", 50, "maximum number of rooms")
	return func(ctx context.Context) error {
		resp, err := a.chat.GetRooms(ctx, &v1.GetRoomsRequest{Limit: int32(*limit)})
		if err != nil {
			return err
		}
		a.out.rooms(resp.Rooms)
		return nil
	}
}

func (a *app) send(flags *flag.FlagSet) func(ctx context.Context) error {
	room := flags.String("room", a.config.Room, "room id")
	body := flags.String("body", "", "message body")
	return func(ctx context.Context) error {
		resp, err := a.chat.SendMessage(ctx, &v1.SendMessageRequest{RoomID: *room, Body: *body})
		if err != nil {
			return err
		}
		a.out.line("sent %s", resp.MessageID)
		return nil
	}
}

func (a *app) delete(flags *flag.FlagSet) func(ctx context.Context) error {
	id := flags.String("id", "", "message id")
	return func(ctx context.Context) error {
		if _, err := a.chat.DeleteMessage(ctx, &v1.DeleteMessageRequest{MessageID: *id}); err != nil {
			return err
		}
		a.out.line("deleted %s", *id)
		return nil
	}
}

func (a *app) user(flags *flag.FlagSet) func(ctx context.Context) error {
	id := flags.String("id", "", "user id")
	return func(ctx context.Context) error {
		resp, err := a.chat.GetUser(ctx, &v1.GetUserRequest{UserID: *id})
		if err != nil {
			return err
		}
		a.out.user(resp.User)
		return nil
	}
}

// pages reads a room through GetMessages with the configured page size.
func (a *app) pages(room string) pageLoader {
	return func(ctx context.Context, cursor *string) (domain.Page, error) {
		resp, err := a.chat.GetMessages(ctx, &v1.GetMessagesRequest{
			RoomID:   room,
			Cursor:   cursor,
			PageSize: int32(a.config.PageSize),
		})
		if err != nil {
			return domain.Page{}, err
		}
		return v1.ToPage(resp), nil
	}
}

// history walks the room backwards page by page, the way a client scrolling up would.
func (a *app) history(flags *flag.FlagSet) func(ctx context.Context) error {
	room := flags.String("room", a.config.Room, "room id")
	pages := flags.Int("pages", 1, "number of pages to load")
	return func(ctx context.Context) error {
		load := a.pages(*room)
		timeline := projection.NewTimeline(domain.RoomID(*room))
		for i := 0; i < *pages; i++ {
			if i > 0 && !timeline.HasMore() {
				break
			}
			page, err := load(ctx, timeline.Continuation())
			if err != nil {
				return err
			}
			timeline.AppendOlder(page)
		}
		a.out.history(timeline.Items())
		if timeline.HasMore() {
			a.out.line("older messages remain")
		}
		return nil
	}
}

type received struct {
	snapshot *v1.Snapshot
	err      error
}

func receive(ctx context.Context, stream v1.ChatService_SubscribeClient) <-chan received {
	out := make(chan received)
	go func() {
		for {
			snapshot, err := stream.Recv()
			select {
			case out <- received{snapshot: snapshot, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// watch prints new messages as snapshots arrive, oldest first.
// Tombstones of already printed messages are printed again.
// With -from-page the reader starts on older pages and pushes are held until -resume-after.
func (a *app) watch(flags *flag.FlagSet) func(ctx context.Context) error {
	room := flags.String("room", a.config.Room, "room id")
	fromPage := flags.Int("from-page", 0, "older pages to read before following the room")
	resumeAfter := flags.Duration("resume-after", 10*time.Second, "time spent on older pages before returning to the newest message")
	return func(ctx context.Context) error {
		f := newFollower(a.log, a.out, domain.RoomID(*room), a.pages(*room))
		if err := f.scrollBack(ctx, *fromPage); err != nil {
			return err
		}
		stream, err := a.chat.Subscribe(ctx, &v1.SubscribeRequest{RoomID: *room, PageSize: int32(a.config.PageSize)})
		if err != nil {
			return err
		}
		var resume <-chan time.Time
		if !f.anchor.FollowingTail() {
			resume = time.After(*resumeAfter)
		}

		snapshots := receive(ctx, stream)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-resume:
				resume = nil
				if err := f.resume(ctx); err != nil {
					return err
				}
			case r := <-snapshots:
				switch {
				case errors.Is(r.err, io.EOF), status.Code(r.err) == codes.Canceled, ctx.Err() != nil:
					return nil
				case r.err != nil:
					return r.err
				}
				if err := f.apply(ctx, v1.ToSnapshot(r.snapshot)); err != nil {
					return err
				}
			}
		}
	}
}
