package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkoroban/folio/internal/analytics"
	"github.com/dkoroban/folio/internal/auth"
	"github.com/dkoroban/folio/internal/kv"
	"github.com/dkoroban/folio/internal/store"
	"github.com/dkoroban/folio/internal/telegram"
	"github.com/dkoroban/folio/internal/track"
)

// --- fakes -----------------------------------------------------------------

type fakeOrders struct {
	store.OrderRepo
	created []*store.Order
	updated map[uuid.UUID]store.OrderStatus
}

func (f *fakeOrders) Create(_ context.Context, o *store.Order) error {
	o.ID = uuid.New()
	f.created = append(f.created, o)
	return nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, s store.OrderStatus) error {
	if f.updated == nil {
		f.updated = map[uuid.UUID]store.OrderStatus{}
	}
	f.updated[id] = s
	return nil
}

type fakeReviews struct {
	store.ReviewRepo
	created  []*store.Review
	approved []store.Review
}

func (f *fakeReviews) Create(_ context.Context, r *store.Review) error {
	r.ID = uuid.New()
	f.created = append(f.created, r)
	return nil
}

func (f *fakeReviews) ListApproved(context.Context) ([]store.Review, error) {
	return f.approved, nil
}

type fakeUsers struct {
	store.UserRepo
	byEmail map[string]*store.Profile
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*store.Profile, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

type fakeContact struct {
	store.ContactRepo
	created []*store.ContactMessage
}

func (f *fakeContact) Create(_ context.Context, m *store.ContactMessage) error {
	m.ID = uuid.New()
	f.created = append(f.created, m)
	return nil
}

type fakeBridge struct {
	status     telegram.Status
	messages   []telegram.ChatMessage
	sendErr    error
	connects   int
	sent       []string
	sessions   []string
	closed     bool
	connectErr error
}

func (f *fakeBridge) Connect(context.Context) error { f.connects++; return f.connectErr }
func (f *fakeBridge) BindSession(id string) {
	if id != "" {
		f.sessions = append(f.sessions, id)
	}
}
func (f *fakeBridge) Send(_ context.Context, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}
func (f *fakeBridge) Status() telegram.Status          { return f.status }
func (f *fakeBridge) Messages() []telegram.ChatMessage { return f.messages }
func (f *fakeBridge) Close()                           { f.closed = true }

// --- helpers ---------------------------------------------------------------

func newTestHandler(t *testing.T, mutate func(*Config)) (*Handler, chi.Router) {
	t.Helper()
	kvStore := kv.NewMemoryStore()
	tracker := track.NewTracker(kvStore)
	cfg := Config{
		Store: &store.Store{
			Orders:  &fakeOrders{},
			Reviews: &fakeReviews{},
			Users:   &fakeUsers{byEmail: map[string]*store.Profile{}},
			Contact: &fakeContact{},
		},
		Tracker:    tracker,
		Analytics:  analytics.NewService(tracker, kvStore),
		JWTSecret:  "test-secret",
		UploadsDir: t.TempDir(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h := New(cfg)
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return h, r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- chat widget -----------------------------------------------------------

func TestChatNotConfigured(t *testing.T) {
	_, r := newTestHandler(t, nil) // no bridge

	for _, path := range []string{"/api/chat/connect", "/api/chat/send"} {
		rec := doJSON(r, http.MethodPost, path, map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestChatConnect(t *testing.T) {
	bridge := &fakeBridge{status: telegram.Status{State: telegram.StateConnected}}
	_, r := newTestHandler(t, func(c *Config) { c.Bridge = bridge })

	rec := doJSON(r, http.MethodPost, "/api/chat/connect", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, bridge.connects)

	var status telegram.Status
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, telegram.StateConnected, status.State)
}

func TestChatConnectFailureCarriesStatus(t *testing.T) {
	bridge := &fakeBridge{
		status:     telegram.Status{State: telegram.StateError, Error: "telegram: Unauthorized"},
		connectErr: &telegram.APIError{Description: "Unauthorized"},
	}
	_, r := newTestHandler(t, func(c *Config) { c.Bridge = bridge })

	rec := doJSON(r, http.MethodPost, "/api/chat/connect", nil)
	// the widget reads the error out of the status payload
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestChatSendErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty", telegram.ErrEmptyMessage, http.StatusBadRequest},
		{"not connected", telegram.ErrNotConnected, http.StatusConflict},
		{"in flight", telegram.ErrSendInFlight, http.StatusTooManyRequests},
		{"api error", &telegram.APIError{Description: "chat not found"}, http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bridge := &fakeBridge{sendErr: tc.err}
			_, r := newTestHandler(t, func(c *Config) { c.Bridge = bridge })

			rec := doJSON(r, http.MethodPost, "/api/chat/send", map[string]string{"text": "x"})
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestChatSendOK(t *testing.T) {
	bridge := &fakeBridge{status: telegram.Status{State: telegram.StateConnected}}
	_, r := newTestHandler(t, func(c *Config) { c.Bridge = bridge })

	rec := doJSON(r, http.MethodPost, "/api/chat/send", map[string]string{"text": "hello"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hello"}, bridge.sent)
}

func TestChatSessionBinding(t *testing.T) {
	bridge := &fakeBridge{status: telegram.Status{State: telegram.StateConnected}}
	_, r := newTestHandler(t, func(c *Config) { c.Bridge = bridge })

	req := httptest.NewRequest(http.MethodPost, "/api/chat/connect", nil)
	req.Header.Set("X-Session-Id", "s-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/chat/send", map[string]string{
		"text": "hi", "session_id": "s-42",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"s-42", "s-42"}, bridge.sessions,
		"connect and send must both bind the widget session")
}

func TestChatClose(t *testing.T) {
	bridge := &fakeBridge{}
	_, r := newTestHandler(t, func(c *Config) { c.Bridge = bridge })

	rec := doJSON(r, http.MethodDelete, "/api/chat/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, bridge.closed)
}

// --- public forms ----------------------------------------------------------

func TestSubmitReview(t *testing.T) {
	reviews := &fakeReviews{}
	_, r := newTestHandler(t, func(c *Config) { c.Store.Reviews = reviews })

	rec := doJSON(r, http.MethodPost, "/api/reviews", map[string]any{
		"author": "Ada",
		"rating": 5,
		"text":   "Great <script>alert(1)</script>work",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.Len(t, reviews.created, 1) {
		assert.NotContains(t, reviews.created[0].Text, "<script>")
		assert.False(t, reviews.created[0].Approved, "new reviews must start unapproved")
	}
}

func TestSubmitReviewValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing author", map[string]any{"rating": 4, "text": "ok"}},
		{"missing text", map[string]any{"author": "Ada", "rating": 4}},
		{"rating too low", map[string]any{"author": "Ada", "rating": 0, "text": "ok"}},
		{"rating too high", map[string]any{"author": "Ada", "rating": 6, "text": "ok"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reviews := &fakeReviews{}
			_, r := newTestHandler(t, func(c *Config) { c.Store.Reviews = reviews })

			rec := doJSON(r, http.MethodPost, "/api/reviews", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, reviews.created)
		})
	}
}

func TestSubmitOrderMultipart(t *testing.T) {
	orders := &fakeOrders{}
	_, r := newTestHandler(t, func(c *Config) { c.Store.Orders = orders })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("client_name", "Bob")
	mw.WriteField("client_email", "bob@example.com")
	mw.WriteField("service", "logo design")
	fw, _ := mw.CreateFormFile("payment_proof", "receipt.png")
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	if assert.Len(t, orders.created, 1) {
		o := orders.created[0]
		assert.Equal(t, "Bob", o.ClientName)
		assert.NotEmpty(t, o.PaymentProofPath, "payment proof should be stored")
	}
}

func TestSubmitOrderMissingFields(t *testing.T) {
	orders := &fakeOrders{}
	_, r := newTestHandler(t, func(c *Config) { c.Store.Orders = orders })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("client_name", "Bob")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/orders", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, orders.created)
}

func TestSubmitContact(t *testing.T) {
	contact := &fakeContact{}
	_, r := newTestHandler(t, func(c *Config) { c.Store.Contact = contact })

	rec := doJSON(r, http.MethodPost, "/api/contact", map[string]string{
		"name": "Eve", "email": "eve@example.com", "message": "hi there",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, contact.created, 1)

	rec = doJSON(r, http.MethodPost, "/api/contact", map[string]string{"name": "Eve"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackVisit(t *testing.T) {
	h, r := newTestHandler(t, nil)

	rec := doJSON(r, http.MethodPost, "/api/track/visit", map[string]string{
		"session_id": "s1", "path": "/portfolio",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	sessions, err := h.tracker.Sessions(time.Time{})
	assert.NoError(t, err)
	if assert.Len(t, sessions, 1) {
		assert.Equal(t, "/portfolio", sessions[0].Records[0].Path)
	}
}

// --- auth / admin ----------------------------------------------------------

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	users := &fakeUsers{byEmail: map[string]*store.Profile{
		"admin@example.com": {
			ID: uuid.New(), Email: "admin@example.com", PasswordHash: hash, Role: "admin",
		},
	}}
	_, r := newTestHandler(t, func(c *Config) { c.Store.Users = users })

	t.Run("valid credentials", func(t *testing.T) {
		rec := doJSON(r, http.MethodPost, "/api/login", map[string]string{
			"email": "admin@example.com", "password": "hunter22",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		_, role, err := auth.ValidateJWT(resp.Token, "test-secret")
		assert.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, role)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(r, http.MethodPost, "/api/login", map[string]string{
			"email": "admin@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(r, http.MethodPost, "/api/login", map[string]string{
			"email": "ghost@example.com", "password": "hunter22",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminRequiresToken(t *testing.T) {
	_, r := newTestHandler(t, nil)

	rec := doJSON(r, http.MethodGet, "/api/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrderStatusUpdate(t *testing.T) {
	orders := &fakeOrders{}
	_, r := newTestHandler(t, func(c *Config) { c.Store.Orders = orders })

	token, _ := auth.MakeJWT(uuid.New(), auth.RoleAdmin, "test-secret", time.Hour)
	id := uuid.New()

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+id.String(), body)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, store.OrderConfirmed, orders.updated[id])
}

func TestAdminAnalyticsSummary(t *testing.T) {
	h, r := newTestHandler(t, nil)
	h.tracker.AddPageVisit("s1", "/")
	h.tracker.AddChatMessage("s1", "hi", true, "text")

	token, _ := auth.MakeJWT(uuid.New(), auth.RoleAdmin, "test-secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics?days=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var sum analytics.Summary
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.Visits)
	assert.Equal(t, 1, sum.Chat.Visitor)
}
