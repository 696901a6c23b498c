// Package handler exposes the site's REST API: public content and intake
// forms, the chat widget surface over the Telegram bridge, and the JWT-gated
// admin back office.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dkoroban/folio/internal/analytics"
	"github.com/dkoroban/folio/internal/store"
	"github.com/dkoroban/folio/internal/telegram"
	"github.com/dkoroban/folio/internal/track"
)

// ChatBridge is the slice of the Telegram bridge the widget endpoints use.
type ChatBridge interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, text string) error
	BindSession(id string)
	Status() telegram.Status
	Messages() []telegram.ChatMessage
	Close()
}

// Config wires a Handler.
type Config struct {
	Store      *store.Store
	Bridge     ChatBridge // nil when the bridge is not configured
	Tracker    *track.Tracker
	Analytics  *analytics.Service
	JWTSecret  string
	TokenTTL   time.Duration
	UploadsDir string
	MaxUpload  int64
}

type Handler struct {
	store      *store.Store
	bridge     ChatBridge
	tracker    *track.Tracker
	analytics  *analytics.Service
	jwtSecret  string
	tokenTTL   time.Duration
	uploadsDir string
	maxUpload  int64
	sanitizer  *bluemonday.Policy
}

func New(cfg Config) *Handler {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	maxUpload := cfg.MaxUpload
	if maxUpload == 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		store:      cfg.Store,
		bridge:     cfg.Bridge,
		tracker:    cfg.Tracker,
		analytics:  cfg.Analytics,
		jwtSecret:  cfg.JWTSecret,
		tokenTTL:   ttl,
		uploadsDir: cfg.UploadsDir,
		maxUpload:  maxUpload,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("handler: failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// clean strips all markup from user-submitted text.
func (h *Handler) clean(s string) string {
	return h.sanitizer.Sanitize(s)
}
