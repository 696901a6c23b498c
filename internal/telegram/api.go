package telegram

import "context"

// Update is one deliverable event from the Bot API. Update IDs are assigned
// by Telegram and increase monotonically.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming or outgoing chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
	Date      int64  `json:"date"` // unix seconds
}

// User is a Telegram account (the bot's own identity from getMe, or a
// message sender).
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// API is the Bot API surface the bridge depends on. *Client implements it;
// tests substitute a scripted fake.
type API interface {
	GetMe(ctx context.Context) (*User, error)
	GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) (*Message, error)
}
