package main

import (
	v1 "chat-feed/contracts/chat/v1"
	"chat-feed/domain"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const timeLayout = "2006-01-02 15:04:05"

type renderer struct {
	w       io.Writer
	colours bool
}

func newRenderer(w io.Writer, colours bool) *renderer {
	return &renderer{w: w, colours: colours}
}

func (r *renderer) paint(style color.Style, s string) string {
	if !r.colours {
		return s
	}
	return style.Render(s)
}

func (r *renderer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *renderer) token(userID, token string) {
	r.line("user %s", userID)
	r.line("export CHAT_TOKEN=%s", token)
}

func (r *renderer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	return table
}

func (r *renderer) rooms(rooms []v1.Room) {
	table := r.table([]string{"ID", "Name", "Description"})
	for _, room := range rooms {
		table.Append([]string{room.ID, room.Name, room.Description})
	}
	table.Render()
}

func (r *renderer) user(user v1.User) {
	table := r.table([]string{"ID", "Name", "Roles"})
	table.Append([]string{user.ID, user.Name, strings.Join(user.Roles, ",")})
	table.Render()
}

// history renders the window oldest first, like a chat transcript.
func (r *renderer) history(items []domain.FeedItem) {
	table := r.table([]string{"Time", "Author", "Message", "ID"})
	for _, item := range lo.Reverse(slices.Clone(items)) {
		table.Append([]string{
			item.Message.CreatedAt.Local().Format(timeLayout),
			item.Author.Name,
			item.Message.Body,
			item.Message.ID.String(),
		})
	}
	table.Render()
}

func (r *renderer) item(item domain.FeedItem) {
	style := color.New(color.FgGreen, color.OpBold)
	switch {
	case item.Message.IsDeleted:
		style = color.New(color.FgGray)
	case item.Author.IsAnonymous:
		style = color.New(color.FgYellow)
	}
	r.line("[%s] %s: %s",
		item.Message.CreatedAt.Local().Format(timeLayout),
		r.paint(style, item.Author.Name),
		item.Message.Body)
}
