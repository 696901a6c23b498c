// Package track records visitor sessions: page visits and chat widget
// messages. Sessions are held in memory and persisted through a kv.Store so
// the analytics dashboard can aggregate them later.
package track

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dkoroban/folio/internal/bus"
	"github.com/dkoroban/folio/internal/kv"
)

const keyPrefix = "session:"

// Record is a single tracked occurrence inside a session.
type Record struct {
	Kind        string    `json:"kind"` // bus.KindChatMessage or bus.KindPageVisit
	Text        string    `json:"text,omitempty"`
	FromVisitor bool      `json:"from_visitor,omitempty"`
	MessageType string    `json:"message_type,omitempty"`
	Path        string    `json:"path,omitempty"`
	At          time.Time `json:"at"`
}

// Session is one visitor's activity window.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	LastSeen  time.Time `json:"last_seen"`
	Records   []Record  `json:"records"`
}

// Tracker appends records to sessions and persists them.
type Tracker struct {
	store kv.Store
	cache map[string]*Session
	now   func() time.Time
	mu    sync.Mutex
}

func NewTracker(store kv.Store) *Tracker {
	return &Tracker{
		store: store,
		cache: make(map[string]*Session),
		now:   time.Now,
	}
}

// Wire subscribes the tracker to chat and visit events on the bus.
func (t *Tracker) Wire(b *bus.EventBus) {
	b.Subscribe("", func(ev bus.Event) {
		switch ev.Kind {
		case bus.KindChatMessage:
			t.AddChatMessage(ev.SessionID, ev.Text, ev.FromVisitor, ev.MessageType)
		case bus.KindPageVisit:
			t.AddPageVisit(ev.SessionID, ev.Path)
		}
	})
}

// AddChatMessage records a chat message in the visitor's session.
// Fire-and-forget: persistence failures are logged, not returned.
func (t *Tracker) AddChatMessage(sessionID, text string, fromVisitor bool, messageType string) {
	if messageType == "" {
		messageType = "text"
	}
	t.append(sessionID, Record{
		Kind:        bus.KindChatMessage,
		Text:        text,
		FromVisitor: fromVisitor,
		MessageType: messageType,
		At:          t.now(),
	})
}

// AddPageVisit records a page view in the visitor's session.
func (t *Tracker) AddPageVisit(sessionID, path string) {
	t.append(sessionID, Record{
		Kind: bus.KindPageVisit,
		Path: path,
		At:   t.now(),
	})
}

func (t *Tracker) append(sessionID string, rec Record) {
	if sessionID == "" {
		sessionID = "anonymous"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.getOrCreate(sessionID)
	s.Records = append(s.Records, rec)
	s.LastSeen = rec.At

	if err := t.save(s); err != nil {
		slog.Warn("track: failed to persist session", "session", sessionID, "error", err)
	}
}

// getOrCreate returns the cached session or loads/creates one.
// Caller must hold t.mu.
func (t *Tracker) getOrCreate(sessionID string) *Session {
	if s, ok := t.cache[sessionID]; ok {
		return s
	}

	s := t.load(sessionID)
	if s == nil {
		now := t.now()
		s = &Session{
			ID:        sessionID,
			StartedAt: now,
			LastSeen:  now,
			Records:   []Record{},
		}
	}
	t.cache[sessionID] = s
	return s
}

func (t *Tracker) save(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return t.store.Set(keyPrefix+s.ID, data)
}

// load reads a session from the store; returns nil if absent or unreadable.
func (t *Tracker) load(sessionID string) *Session {
	data, err := t.store.Get(keyPrefix + sessionID)
	if err != nil {
		return nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

// Sessions returns all persisted sessions whose last activity is at or after
// since. Pass the zero time for everything.
func (t *Tracker) Sessions(since time.Time) ([]*Session, error) {
	keys, err := t.store.Keys(keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var out []*Session
	for _, k := range keys {
		data, err := t.store.Get(k)
		if err != nil {
			continue
		}
		var s Session
		if err := json.Unmarshal(data, &s); err != nil {
			slog.Warn("track: skipping unreadable session", "key", k, "error", err)
			continue
		}
		if !since.IsZero() && s.LastSeen.Before(since) {
			continue
		}
		out = append(out, &s)
	}
	return out, nil
}
