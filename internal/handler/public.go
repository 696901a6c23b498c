package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkoroban/folio/internal/store"
)

// GetContent returns all content sections for the public pages.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	sections, err := h.store.Content.List(r.Context())
	if err != nil {
		slog.Error("handler: failed to load content", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load content")
		return
	}
	respondJSON(w, http.StatusOK, sections)
}

// GetContentSection returns one named section.
func (h *Handler) GetContentSection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	c, err := h.store.Content.Get(r.Context(), section)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "unknown section")
		return
	}
	if err != nil {
		slog.Error("handler: failed to load content section", "section", section, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load content")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// GetProjects returns the portfolio entries.
func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.Projects.List(r.Context())
	if err != nil {
		slog.Error("handler: failed to load projects", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load projects")
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

// GetReviews returns approved testimonials only.
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.Reviews.ListApproved(r.Context())
	if err != nil {
		slog.Error("handler: failed to load reviews", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// SubmitReview accepts a testimonial; it stays hidden until approved.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Author string `json:"author"`
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	payload.Author = strings.TrimSpace(payload.Author)
	payload.Text = strings.TrimSpace(h.clean(payload.Text))
	if payload.Author == "" || payload.Text == "" {
		respondError(w, http.StatusBadRequest, "author and text are required")
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	review := &store.Review{
		Author: h.clean(payload.Author),
		Rating: payload.Rating,
		Text:   payload.Text,
	}
	if err := h.store.Reviews.Create(r.Context(), review); err != nil {
		slog.Error("handler: failed to save review", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save review")
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

// SubmitOrder accepts the intake form as multipart/form-data with an
// optional payment-proof file.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	order := &store.Order{
		ClientName:  strings.TrimSpace(r.FormValue("client_name")),
		ClientEmail: strings.TrimSpace(r.FormValue("client_email")),
		Service:     strings.TrimSpace(r.FormValue("service")),
		Details:     h.clean(r.FormValue("details")),
		Budget:      strings.TrimSpace(r.FormValue("budget")),
	}
	if order.ClientName == "" || order.ClientEmail == "" || order.Service == "" {
		respondError(w, http.StatusBadRequest, "client_name, client_email and service are required")
		return
	}

	if file, header, err := r.FormFile("payment_proof"); err == nil {
		defer file.Close()
		path, err := h.savePaymentProof(file, header.Filename)
		if err != nil {
			slog.Error("handler: failed to store payment proof", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to store payment proof")
			return
		}
		order.PaymentProofPath = path
	}

	if err := h.store.Orders.Create(r.Context(), order); err != nil {
		slog.Error("handler: failed to save order", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save order")
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// savePaymentProof writes the upload under the uploads dir with a
// non-guessable name, keeping only the original extension.
func (h *Handler) savePaymentProof(src io.Reader, original string) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	ext := filepath.Ext(original)
	if len(ext) > 10 {
		ext = ""
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UTC().Unix(), uuid.NewString(), ext)
	path := filepath.Join(h.uploadsDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, h.maxUpload)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

// SubmitContact stores a contact-form message.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Message = strings.TrimSpace(h.clean(payload.Message))
	if payload.Name == "" || payload.Email == "" || payload.Message == "" {
		respondError(w, http.StatusBadRequest, "name, email and message are required")
		return
	}

	msg := &store.ContactMessage{Name: h.clean(payload.Name), Email: payload.Email, Message: payload.Message}
	if err := h.store.Contact.Create(r.Context(), msg); err != nil {
		slog.Error("handler: failed to save contact message", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// TrackVisit records a page view in the visitor's session.
func (h *Handler) TrackVisit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Path      string `json:"path"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Path == "" {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}

	h.tracker.AddPageVisit(payload.SessionID, payload.Path)
	w.WriteHeader(http.StatusNoContent)
}
