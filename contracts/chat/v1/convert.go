package v1

import (
	"chat-feed/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

func FromMessage(m domain.Message) Message {
	return Message{
		ID:        m.ID.String(),
		RoomID:    string(m.RoomID),
		AuthorID:  string(m.AuthorID),
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		IsDeleted: m.IsDeleted,
		IsEdited:  m.IsEdited,
	}
}

func FromAuthor(a domain.Author) Author {
	return Author{ID: string(a.ID), Name: a.Name, Image: a.Image, IsAnonymous: a.IsAnonymous}
}

func FromItems(items []domain.FeedItem) []FeedItem {
	return lo.Map(items, func(item domain.FeedItem, _ int) FeedItem {
		return FeedItem{Message: FromMessage(item.Message), Author: FromAuthor(item.Author)}
	})
}

func FromPage(page domain.Page) *GetMessagesResponse {
	return &GetMessagesResponse{
		Items:        FromItems(page.Items),
		Continuation: page.Continuation,
		HasMore:      page.HasMore,
	}
}

func FromSnapshot(subscriptionID string, s domain.Snapshot) *Snapshot {
	return &Snapshot{
		SubscriptionID: subscriptionID,
		RoomID:         string(s.Room),
		Version:        s.Version,
		PageSize:       int32(s.PageSize),
		Items:          FromItems(s.Page.Items),
		Continuation:   s.Page.Continuation,
		HasMore:        s.Page.HasMore,
		At:             s.At,
	}
}

func FromRoom(r domain.Room) Room {
	return Room{
		ID:          string(r.ID),
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   string(r.CreatedBy),
		CreatedAt:   r.CreatedAt,
	}
}

func FromUser(u domain.User) *User {
	return &User{ID: string(u.ID), Email: u.Email, Name: u.Name, Image: u.Image, Roles: u.Roles}
}

// ToItems is the inverse of FromItems. Items with a malformed id are skipped.
func ToItems(items []FeedItem) []domain.FeedItem {
	return lo.FilterMap(items, func(item FeedItem, _ int) (domain.FeedItem, bool) {
		id, err := uuid.Parse(item.Message.ID)
		if err != nil {
			return domain.FeedItem{}, false
		}
		return domain.FeedItem{
			Message: domain.Message{
				ID:        id,
				RoomID:    domain.RoomID(item.Message.RoomID),
				AuthorID:  domain.UserID(item.Message.AuthorID),
				Body:      item.Message.Body,
				CreatedAt: item.Message.CreatedAt,
				UpdatedAt: item.Message.UpdatedAt,
				IsDeleted: item.Message.IsDeleted,
				IsEdited:  item.Message.IsEdited,
			},
			Author: domain.Author{
				ID:          domain.UserID(item.Author.ID),
				Name:        item.Author.Name,
				Image:       item.Author.Image,
				IsAnonymous: item.Author.IsAnonymous,
			},
		}, true
	})
}

func ToPage(resp *GetMessagesResponse) domain.Page {
	return domain.Page{Items: ToItems(resp.Items), Continuation: resp.Continuation, HasMore: resp.HasMore}
}

func ToSnapshot(s *Snapshot) domain.Snapshot {
	return domain.Snapshot{
		Room:     domain.RoomID(s.RoomID),
		Version:  s.Version,
		PageSize: int(s.PageSize),
		Page:     domain.Page{Items: ToItems(s.Items), Continuation: s.Continuation, HasMore: s.HasMore},
		At:       s.At,
	}
}
