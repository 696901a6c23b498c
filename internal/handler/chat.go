package handler

import (
	"errors"
	"net/http"

	"github.com/dkoroban/folio/internal/telegram"
)

// ChatConnect opens (or retries) the bridge connection and returns its
// status. The widget shows a Retry action off the error state.
func (h *Handler) ChatConnect(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	h.bridge.BindSession(chatSession(r))

	// the connection error is carried in the status payload; the widget
	// renders it rather than an HTTP failure
	_ = h.bridge.Connect(r.Context())
	respondJSON(w, http.StatusOK, h.bridge.Status())
}

// chatSession extracts the widget's session id from the request so chat
// events land in the same tracked session as the visitor's page views.
func chatSession(r *http.Request) string {
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	return r.URL.Query().Get("session_id")
}

// ChatMessages returns the bridge status and the current transcript.
func (h *Handler) ChatMessages(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":   h.bridge.Status(),
		"messages": h.bridge.Messages(),
	})
}

// ChatSend forwards the visitor's message through the bridge.
func (h *Handler) ChatSend(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var payload struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	if payload.SessionID != "" {
		h.bridge.BindSession(payload.SessionID)
	} else {
		h.bridge.BindSession(chatSession(r))
	}

	err := h.bridge.Send(r.Context(), payload.Text)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, h.bridge.Status())
	case errors.Is(err, telegram.ErrEmptyMessage):
		respondError(w, http.StatusBadRequest, "message text is empty")
	case errors.Is(err, telegram.ErrNotConnected):
		respondError(w, http.StatusConflict, "chat is not connected")
	case errors.Is(err, telegram.ErrSendInFlight):
		respondError(w, http.StatusTooManyRequests, "a send is already in progress")
	default:
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			respondError(w, http.StatusBadGateway, apiErr.Description)
			return
		}
		respondError(w, http.StatusBadGateway, "failed to send message")
	}
}

// ChatClose tears the widget session down.
func (h *Handler) ChatClose(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		respondError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}
	h.bridge.Close()
	w.WriteHeader(http.StatusNoContent)
}
