package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkoroban/folio/internal/auth"
	"github.com/dkoroban/folio/internal/store"
)

// Login verifies credentials and issues a JWT with the user's role.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	profile, err := h.store.Users.GetByEmail(r.Context(), payload.Email)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		slog.Error("handler: login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if _, err := auth.CheckPasswordHash(payload.Password, profile.PasswordHash); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.MakeJWT(profile.ID, auth.Role(profile.Role), h.jwtSecret, h.tokenTTL)
	if err != nil {
		slog.Error("handler: failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":           profile.ID,
			"email":        profile.Email,
			"display_name": profile.DisplayName,
			"role":         profile.Role,
		},
	})
}

// ListOrders returns every order for the back office.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.Orders.List(r.Context())
	if err != nil {
		slog.Error("handler: failed to list orders", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus moves an order through payment review.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	status := store.OrderStatus(payload.Status)
	switch status {
	case store.OrderPending, store.OrderConfirmed, store.OrderRejected:
	default:
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.store.Orders.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		slog.Error("handler: failed to update order", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAllReviews includes unapproved testimonials.
func (h *Handler) ListAllReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.Reviews.ListAll(r.Context())
	if err != nil {
		slog.Error("handler: failed to list reviews", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// ApproveReview flips a testimonial's visibility.
func (h *Handler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Approved bool `json:"approved"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	if err := h.store.Reviews.SetApproved(r.Context(), id, payload.Approved); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "review not found")
			return
		}
		slog.Error("handler: failed to update review", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteReview removes a testimonial.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.Reviews.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "review not found")
			return
		}
		slog.Error("handler: failed to delete review", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateProject adds a portfolio entry.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var p store.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := h.store.Projects.Create(r.Context(), &p); err != nil {
		slog.Error("handler: failed to create project", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// UpdateProject edits a portfolio entry.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var p store.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = id
	if err := h.store.Projects.Update(r.Context(), &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		slog.Error("handler: failed to update project", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update project")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// DeleteProject removes a portfolio entry.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.Projects.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found")
			return
		}
		slog.Error("handler: failed to delete project", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpsertContent creates or replaces a named content section.
func (h *Handler) UpsertContent(w http.ResponseWriter, r *http.Request) {
	var c store.ContentSection
	if !decodeJSON(w, r, &c) {
		return
	}
	c.Section = chi.URLParam(r, "section")
	if c.Section == "" {
		respondError(w, http.StatusBadRequest, "section is required")
		return
	}
	if err := h.store.Content.Upsert(r.Context(), &c); err != nil {
		slog.Error("handler: failed to upsert content", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save content")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// ListContactMessages returns contact-form submissions.
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.store.Contact.List(r.Context())
	if err != nil {
		slog.Error("handler: failed to list contact messages", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

// ListUsers returns back-office users with their roles.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users.List(r.Context())
	if err != nil {
		slog.Error("handler: failed to list users", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// CreateUser registers a back-office user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
		Role        string `json:"role"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		slog.Error("handler: failed to hash password", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	profile := &store.Profile{
		Email:        payload.Email,
		DisplayName:  payload.DisplayName,
		PasswordHash: hash,
		Role:         payload.Role,
	}
	if err := h.store.Users.Create(r.Context(), profile); err != nil {
		slog.Error("handler: failed to create user", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// SetUserRole changes a user's role.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var payload struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Role != string(auth.RoleAdmin) && payload.Role != string(auth.RoleUser) {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := h.store.Users.SetRole(r.Context(), id, payload.Role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("handler: failed to set role", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to set role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyticsSummary aggregates visitor activity for the dashboard charts.
// Query params: days (default 7).
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	sum, err := h.analytics.Summarize(from, to)
	if err != nil {
		slog.Error("handler: failed to summarize analytics", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load analytics")
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.UUID{}, false
	}
	return id, true
}
