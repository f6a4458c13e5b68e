package domain

type Command interface {
	RoomID() RoomID
}

type SendMessageCommand struct {
	Room RoomID
	Body string `validate:"required"`
}

func (c SendMessageCommand) RoomID() RoomID {
	return c.Room
}

type GetMessagesCommand struct {
	Room     RoomID
	Cursor   *string
	PageSize int `validate:"gt=0"`
}

func (c GetMessagesCommand) RoomID() RoomID {
	return c.Room
}

type SubscribeCommand struct {
	Room     RoomID
	PageSize int `validate:"gt=0"`
}

func (c SubscribeCommand) RoomID() RoomID {
	return c.Room
}
