package feed

import (
	"chat-feed/domain"
	"chat-feed/repositories"
	"context"
	"log/slog"

	"github.com/samber/lo"
)

// Enricher attaches author snapshots to a page of messages with a single batched lookup.
// It never fails: unknown authors, or a failed lookup, fall back to the Anonymous placeholder.
type Enricher struct {
	users repositories.IUserRepository
	log   *slog.Logger
}

func NewEnricher(users repositories.IUserRepository, log *slog.Logger) Enricher {
	return Enricher{users: users, log: log}
}

func (e Enricher) Enrich(ctx context.Context, messages []domain.Message) []domain.FeedItem {
	if len(messages) == 0 {
		return []domain.FeedItem{}
	}
	authorIDs := lo.Uniq(lo.Map(messages, func(m domain.Message, _ int) domain.UserID {
		return m.AuthorID
	}))

	users, err := e.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		e.log.Warn("Author lookup failed, using placeholders", "count", len(authorIDs), "error", err)
		users = nil
	}

	return lo.Map(messages, func(m domain.Message, _ int) domain.FeedItem {
		user, ok := users[m.AuthorID]
		if !ok {
			return domain.FeedItem{Message: m, Author: domain.AnonymousAuthor(m.AuthorID)}
		}
		return domain.FeedItem{Message: m, Author: domain.AuthorFromUser(user)}
	})
}
