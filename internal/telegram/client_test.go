package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("TOKEN",
		WithAPIEndpoint(srv.URL+"/bot%s/%s"),
		WithHTTPClient(srv.Client()))
}

func TestGetMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/getMe" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"id": 42, "is_bot": true, "first_name": "Folio", "username": "folio_bot",
			},
		})
	})

	u, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe failed: %v", err)
	}
	if u.ID != 42 || u.Username != "folio_bot" || !u.IsBot {
		t.Errorf("unexpected identity: %+v", u)
	}
}

func TestGetMeUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "description": "Unauthorized",
		})
	})

	_, err := client.GetMe(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Description != "Unauthorized" {
		t.Errorf("description = %q, want Unauthorized", apiErr.Description)
	}
}

func TestGetUpdatesParams(t *testing.T) {
	tests := []struct {
		name       string
		offset     int64
		limit      int
		wantOffset string
		wantLimit  string
	}{
		{"incremental poll", 8, 10, "8", "10"},
		{"fetch from beginning", 0, 20, "", "20"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotOffset, gotLimit string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotOffset = r.FormValue("offset")
				gotLimit = r.FormValue("limit")
				json.NewEncoder(w).Encode(map[string]any{
					"ok": true,
					"result": []map[string]any{{
						"update_id": 9,
						"message": map[string]any{
							"message_id": 55,
							"from":       map[string]any{"id": 7},
							"chat":       map[string]any{"id": 1001},
							"text":       "hi",
							"date":       1700000000,
						},
					}},
				})
			})

			updates, err := client.GetUpdates(context.Background(), tc.offset, tc.limit)
			if err != nil {
				t.Fatalf("GetUpdates failed: %v", err)
			}
			if gotOffset != tc.wantOffset || gotLimit != tc.wantLimit {
				t.Errorf("params offset=%q limit=%q, want offset=%q limit=%q",
					gotOffset, gotLimit, tc.wantOffset, tc.wantLimit)
			}
			if len(updates) != 1 || updates[0].UpdateID != 9 {
				t.Fatalf("unexpected updates: %+v", updates)
			}
			m := updates[0].Message
			if m == nil || m.MessageID != 55 || m.Chat.ID != 1001 || m.From.ID != 7 {
				t.Errorf("message not mapped: %+v", m)
			}
		})
	}
}

func TestSendMessage(t *testing.T) {
	var gotChatID, gotText string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": 77, "chat": map[string]any{"id": 1001}, "text": "hello",
			},
		})
	})

	m, err := client.SendMessage(context.Background(), 1001, "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if m.MessageID != 77 || m.Text != "hello" {
		t.Errorf("unexpected message: %+v", m)
	}
	if gotChatID != "1001" || gotText != "hello" {
		t.Errorf("sent chat_id=%q text=%q", gotChatID, gotText)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "description": "Bad Request: chat not found",
		})
	})

	_, err := client.SendMessage(context.Background(), 1, "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Description != "Bad Request: chat not found" {
		t.Errorf("description = %q", apiErr.Description)
	}
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.GetMe(context.Background())
	if err == nil {
		t.Fatal("expected an error for a non-JSON response")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("a transport failure must not masquerade as an API error: %v", err)
	}
}
