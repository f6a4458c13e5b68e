package e2e

import (
	v1 "chat-feed/contracts/chat/v1"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testLiveFeedSuite struct {
	BaseGrpcSuite
	token  string
	roomID string
}

func TestLiveFeedSuite(t *testing.T) {
	suite.Run(t, &testLiveFeedSuite{})
}

func (s *testLiveFeedSuite) TestFullLiveFeedFlow() {
	body := fmt.Sprintf("e2e %s", uuid.NewString())

	s.Run("Step 0: Register a fresh account", func() {
		s.WithServer("Register", func(ctx context.Context, clients Clients) {
			resp, err := clients.Auth.Register(ctx, &v1.RegisterRequest{
				Email:    fmt.Sprintf("e2e-%s@example.com", uuid.NewString()[:8]),
				Password: "E2e-Password-42",
				Name:     "e2e",
			})
			s.Require().NoError(err)
			s.token = resp.Token
		})
	})

	s.Run("Step 1: Ensure the general room", func() {
		s.WithServer("EnsureRoom", func(ctx context.Context, clients Clients) {
			resp, err := clients.Chat.EnsureRoom(Authorized(ctx, s.token), &v1.EnsureRoomRequest{Name: s.Config.GeneralRoom})
			s.Require().NoError(err)
			s.roomID = resp.RoomID
		})
	})

	s.Run("Step 2: Subscribe, send and observe the snapshot", func() {
		s.WithServer("Subscribe then SendMessage", func(ctx context.Context, clients Clients) {
			ctx = Authorized(ctx, s.token)
			stream, err := clients.Chat.Subscribe(ctx, &v1.SubscribeRequest{RoomID: s.roomID, PageSize: 20})
			s.Require().NoError(err)

			initial, err := stream.Recv()
			s.Require().NoError(err, "the initial snapshot must arrive without any write")

			sent, err := clients.Chat.SendMessage(ctx, &v1.SendMessageRequest{RoomID: s.roomID, Body: body})
			s.Require().NoError(err)

			for {
				snapshot, err := stream.Recv()
				s.Require().NoError(err)
				s.Require().Greater(snapshot.Version, initial.Version)
				if _, found := lo.Find(snapshot.Items, func(item v1.FeedItem) bool { return item.Message.ID == sent.MessageID }); found {
					s.Equal(body, snapshot.Items[0].Message.Body)
					return
				}
			}
		})
	})

	s.Run("Step 3: History shows the message first", func() {
		s.WithServer("GetMessages", func(ctx context.Context, clients Clients) {
			page, err := clients.Chat.GetMessages(Authorized(ctx, s.token), &v1.GetMessagesRequest{RoomID: s.roomID, PageSize: 5})
			s.Require().NoError(err)
			s.Require().NotEmpty(page.Items)
			s.Equal(body, page.Items[0].Message.Body)
		})
	})
}

