package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// APIError is a Bot API level failure: the HTTP exchange succeeded but the
// response carried ok:false. Description is surfaced verbatim.
type APIError struct {
	Description string
}

func (e *APIError) Error() string {
	return "telegram: " + e.Description
}

// Client adapts the Bot API SDK to the API interface the bridge polls.
type Client struct {
	bot *tgbotapi.BotAPI
}

type clientOptions struct {
	endpoint string
	http     *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*clientOptions)

// WithAPIEndpoint points the client at a different API host (tests). The
// endpoint is a format string with slots for the token and method, e.g.
// "https://example.test/bot%s/%s".
func WithAPIEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// WithHTTPClient injects the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(o *clientOptions) { o.http = h }
}

// NewClient builds the client without probing getMe, so bad credentials
// surface through Bridge.Connect as an error state instead of failing
// startup.
func NewClient(token string, opts ...ClientOption) *Client {
	o := clientOptions{
		endpoint: tgbotapi.APIEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: o.http,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(o.endpoint)
	return &Client{bot: bot}
}

// GetMe fetches the bot's own identity.
func (c *Client) GetMe(context.Context) (*User, error) {
	me, err := c.bot.GetMe()
	if err != nil {
		return nil, wrapAPIError("getMe", err)
	}
	return &User{
		ID:        me.ID,
		IsBot:     me.IsBot,
		FirstName: me.FirstName,
		Username:  me.UserName,
	}, nil
}

// GetUpdates fetches updates with update_id >= offset. An offset of 0 omits
// the parameter, which the API treats as fetch-from-beginning.
func (c *Client) GetUpdates(_ context.Context, offset int64, limit int) ([]Update, error) {
	raw, err := c.bot.GetUpdates(tgbotapi.UpdateConfig{
		Offset: int(offset),
		Limit:  limit,
	})
	if err != nil {
		return nil, wrapAPIError("getUpdates", err)
	}
	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, Update{
			UpdateID: int64(u.UpdateID),
			Message:  fromMessage(u.Message),
		})
	}
	return updates, nil
}

// SendMessage sends text to the given chat and returns the created message.
func (c *Client) SendMessage(_ context.Context, chatID int64, text string) (*Message, error) {
	sent, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return nil, wrapAPIError("sendMessage", err)
	}
	return fromMessage(&sent), nil
}

func fromMessage(m *tgbotapi.Message) *Message {
	if m == nil {
		return nil
	}
	msg := &Message{
		MessageID: int64(m.MessageID),
		Text:      m.Text,
		Date:      int64(m.Date),
	}
	if m.Chat != nil {
		msg.Chat = Chat{ID: m.Chat.ID}
	}
	if m.From != nil {
		msg.From = &User{
			ID:        m.From.ID,
			IsBot:     m.From.IsBot,
			FirstName: m.From.FirstName,
			Username:  m.From.UserName,
		}
	}
	return msg
}

// wrapAPIError keeps the ok:false description verbatim and wraps everything
// else (network, decode) with the method name.
func wrapAPIError(method string, err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return &APIError{Description: tgErr.Message}
	}
	return fmt.Errorf("telegram: %s failed: %w", method, err)
}
