package bus

import "time"

// Event kinds dispatched over the bus.
const (
	KindChatMessage = "chat_message"
	KindPageVisit   = "page_visit"
)

// Event is a single visitor-facing occurrence: a chat message crossing the
// bridge or a page visit reported by the frontend.
type Event struct {
	Kind        string            // KindChatMessage or KindPageVisit
	SessionID   string            // visitor session identifier, may be empty
	Text        string            // message text (chat events)
	FromVisitor bool              // true when the site visitor originated it
	MessageType string            // "text", "error", "system"
	Path        string            // page path (visit events)
	At          time.Time         // when the event happened
	Metadata    map[string]string // arbitrary metadata
}
