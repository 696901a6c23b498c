// Package telegram implements the chat widget's bridge to a Telegram bot
// account. The bridge long-polls getUpdates to approximate push delivery,
// keeps a deduplicated in-memory transcript, and forwards received messages
// to the event bus for session tracking and analytics.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dkoroban/folio/internal/bus"
)

// State is the bridge connection state.
type State string

const (
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateError      State = "error"
)

// Send guard errors. None of these reach the network.
var (
	ErrEmptyMessage = errors.New("telegram: message text is empty")
	ErrNotConnected = errors.New("telegram: bridge is not connected")
	ErrSendInFlight = errors.New("telegram: a send is already in flight")
)

// localSenderID marks messages originated by the site visitor rather than
// received from Telegram.
const localSenderID int64 = 0

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID        int64  `json:"id"`        // remote message_id, or a local timestamp id
	SenderID  int64  `json:"sender_id"` // localSenderID for visitor messages
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix seconds
	Local     bool   `json:"local"`     // locally originated, pending remote echo
}

// Config configures a Bridge.
type Config struct {
	API          API
	ChatID       int64         // the single conversation the bridge serves
	Bus          *bus.EventBus // optional; receives chat events
	SessionID    string        // session id attached to bus events
	PollInterval time.Duration // default 3s
	PollLimit    int           // default 10
	HistoryLimit int           // default 20
	EchoWindow   time.Duration // default 90s; see merge
}

// Bridge maintains the pseudo-real-time chat session. All state is mutated
// under mu; polls are single-flight via the polling flag.
type Bridge struct {
	api          API
	chatID       int64
	bus          *bus.EventBus
	sessionID    string
	pollInterval time.Duration
	pollLimit    int
	historyLimit int
	echoWindow   time.Duration

	// injectable for tests
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer
	newTicker func(d time.Duration) (<-chan time.Time, func())

	mu           sync.Mutex
	state        State
	stateErr     string
	bot          *User
	messages     []ChatMessage
	seen         map[int64]bool // remote message ids already merged
	lastUpdateID int64
	polling      bool
	sending      bool
	sendErr      string
	running      bool
	stopCh       chan struct{}
}

func NewBridge(cfg Config) *Bridge {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollLimit == 0 {
		cfg.PollLimit = 10
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.EchoWindow == 0 {
		cfg.EchoWindow = 90 * time.Second
	}
	return &Bridge{
		api:          cfg.API,
		chatID:       cfg.ChatID,
		bus:          cfg.Bus,
		sessionID:    cfg.SessionID,
		pollInterval: cfg.PollInterval,
		pollLimit:    cfg.PollLimit,
		historyLimit: cfg.HistoryLimit,
		echoWindow:   cfg.EchoWindow,
		now:          time.Now,
		afterFunc:    time.AfterFunc,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		state:        StateConnecting,
		seen:         make(map[int64]bool),
		stopCh:       make(chan struct{}),
	}
}

// Connect tests the connection with getMe. Success enters StateConnected,
// seeds the transcript from recent history and starts the poll loop.
// Failure enters StateError with the API's description; the caller may
// Connect again to retry.
func (b *Bridge) Connect(ctx context.Context) error {
	b.mu.Lock()
	b.state = StateConnecting
	b.stateErr = ""
	b.mu.Unlock()

	me, err := b.api.GetMe(ctx)
	if err != nil {
		b.mu.Lock()
		b.state = StateError
		b.stateErr = err.Error()
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	b.state = StateConnected
	b.bot = me
	b.mu.Unlock()

	// one-shot seed; failures are logged and do not affect the connection
	if err := b.fetchHistory(ctx); err != nil {
		slog.Warn("telegram: history fetch failed", "error", err)
	}

	b.startLoop()
	return nil
}

// fetchHistory loads the most recent updates, filtered to the configured
// chat, and seeds the poll offset.
func (b *Bridge) fetchHistory(ctx context.Context) error {
	updates, err := b.api.GetUpdates(ctx, 0, b.historyLimit)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.merge(updates, false)
	return nil
}

// startLoop begins the fixed-interval poll timer. Idempotent; a fresh stop
// channel is allocated so the loop can restart after Close. The loop's
// lifetime belongs to the bridge, not to the request that triggered Connect:
// only Close stops it.
func (b *Bridge) startLoop() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.stopCh = make(chan struct{})
	stop := b.stopCh
	b.mu.Unlock()

	go func() {
		tick, cancel := b.newTicker(b.pollInterval)
		defer cancel()
		defer func() {
			b.mu.Lock()
			if b.stopCh == stop {
				b.running = false
			}
			b.mu.Unlock()
		}()
		for {
			select {
			case <-tick:
				b.PollOnce(context.Background())
			case <-stop:
				return
			}
		}
	}()
}

// BindSession attaches the visitor's session id to subsequent bus events so
// chat activity aggregates under the same session as the page visits.
func (b *Bridge) BindSession(id string) {
	if id == "" {
		return
	}
	b.mu.Lock()
	b.sessionID = id
	b.mu.Unlock()
}

// Close stops the poll loop. A poll already in flight is not cancelled.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	b.running = false
	close(b.stopCh)
}

// PollOnce performs one poll step. It no-ops unless the bridge is connected
// and no other poll is in flight, so a slow request causes later ticks to
// skip rather than pile up.
func (b *Bridge) PollOnce(ctx context.Context) {
	b.mu.Lock()
	if b.state != StateConnected || b.polling {
		b.mu.Unlock()
		return
	}
	b.polling = true
	offset := int64(0)
	if b.lastUpdateID > 0 {
		offset = b.lastUpdateID + 1
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.polling = false
		b.mu.Unlock()
	}()

	updates, err := b.api.GetUpdates(ctx, offset, b.pollLimit)
	if err != nil {
		// transient; the next tick tries again
		slog.Debug("telegram: poll failed", "error", err)
		return
	}

	b.mu.Lock()
	b.merge(updates, true)
	b.mu.Unlock()
}

// merge folds a batch of updates into the transcript. Caller must hold b.mu.
//
// The offset advances to the highest update_id present, never backwards.
// Messages are deduplicated by remote message_id. A message sent by the bot
// itself whose text matches a recent locally-originated entry is treated as
// the echo of that send and collapses into it instead of appending.
func (b *Bridge) merge(updates []Update, notify bool) {
	for _, u := range updates {
		if u.UpdateID > b.lastUpdateID {
			b.lastUpdateID = u.UpdateID
		}
		m := u.Message
		if m == nil || m.Chat.ID != b.chatID {
			continue
		}
		if b.seen[m.MessageID] {
			continue
		}
		b.seen[m.MessageID] = true

		if b.collapseEcho(m) {
			continue
		}

		b.messages = append(b.messages, ChatMessage{
			ID:        m.MessageID,
			SenderID:  senderID(m),
			Text:      m.Text,
			Timestamp: m.Date,
		})

		if notify && b.bus != nil {
			b.bus.Publish(bus.Event{
				Kind:        bus.KindChatMessage,
				SessionID:   b.sessionID,
				Text:        m.Text,
				FromVisitor: false,
				MessageType: "text",
				At:          time.Unix(m.Date, 0),
			})
		}
	}
}

// collapseEcho reports whether m is the remote echo of a pending local
// message; if so the local entry is confirmed in place. Matching is by text
// plus approximate timestamp since the remote id differs from the local one.
func (b *Bridge) collapseEcho(m *Message) bool {
	if b.bot == nil || m.From == nil || m.From.ID != b.bot.ID {
		return false
	}
	for i := len(b.messages) - 1; i >= 0; i-- {
		local := &b.messages[i]
		if !local.Local || local.Text != m.Text {
			continue
		}
		if m.Date-local.Timestamp > int64(b.echoWindow/time.Second) {
			break
		}
		local.Local = false
		return true
	}
	return false
}

func senderID(m *Message) int64 {
	if m.From == nil {
		return 0
	}
	return m.From.ID
}

// Send delivers text to the configured chat. Rejected without a network call
// when text is blank, the bridge is not connected, or a send is in flight.
// On success a local transcript entry appears immediately and one extra poll
// runs about a second later so a quick reply shows up promptly.
func (b *Bridge) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	b.mu.Lock()
	if b.state != StateConnected {
		b.mu.Unlock()
		return ErrNotConnected
	}
	if b.sending {
		b.mu.Unlock()
		return ErrSendInFlight
	}
	b.sending = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.sending = false
		b.mu.Unlock()
	}()

	if _, err := b.api.SendMessage(ctx, b.chatID, text); err != nil {
		b.mu.Lock()
		b.sendErr = err.Error()
		b.mu.Unlock()
		return err
	}

	now := b.now()
	b.mu.Lock()
	b.sendErr = ""
	session := b.sessionID
	b.messages = append(b.messages, ChatMessage{
		ID:        now.UnixMilli(),
		SenderID:  localSenderID,
		Text:      text,
		Timestamp: now.Unix(),
		Local:     true,
	})
	b.mu.Unlock()

	if b.bus != nil {
		b.bus.Publish(bus.Event{
			Kind:        bus.KindChatMessage,
			SessionID:   session,
			Text:        text,
			FromVisitor: true,
			MessageType: "text",
			At:          now,
		})
	}

	// out-of-band poll so an immediate reply is not stuck waiting for the
	// regular cadence
	b.afterFunc(time.Second, func() {
		b.PollOnce(context.Background())
	})
	return nil
}

// Status is a point-in-time view of the bridge for the widget API.
type Status struct {
	State        State  `json:"state"`
	Error        string `json:"error,omitempty"`
	SendError    string `json:"send_error,omitempty"`
	Bot          *User  `json:"bot,omitempty"`
	LastUpdateID int64  `json:"last_update_id"`
}

func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Status{
		State:        b.state,
		Error:        b.stateErr,
		SendError:    b.sendErr,
		Bot:          b.bot,
		LastUpdateID: b.lastUpdateID,
	}
}

// Messages returns a copy of the transcript in arrival order.
func (b *Bridge) Messages() []ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ChatMessage, len(b.messages))
	copy(out, b.messages)
	return out
}
