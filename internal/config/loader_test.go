package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoadFromReader(t *testing.T) {
	jsonData := `{
		"server": {
			"host": "127.0.0.1",
			"port": 9090
		},
		"database": {
			"url": "postgres://localhost/folio"
		},
		"telegram": {
			"token": "123:abc",
			"chatId": "5551234",
			"pollIntervalSeconds": 5
		}
	}`

	cfg, err := LoadFromReader(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://localhost/folio" {
		t.Errorf("unexpected database url %s", cfg.Database.URL)
	}
	if cfg.Telegram.PollIntervalSeconds != 5 {
		t.Errorf("expected poll interval 5, got %d", cfg.Telegram.PollIntervalSeconds)
	}
	// untouched sections keep their defaults
	if cfg.Telegram.HistoryLimit != 20 {
		t.Errorf("expected history limit 20, got %d", cfg.Telegram.HistoryLimit)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telegram.PollIntervalSeconds != 3 {
		t.Errorf("expected poll interval 3, got %d", cfg.Telegram.PollIntervalSeconds)
	}
	if cfg.Telegram.PollLimit != 10 {
		t.Errorf("expected poll limit 10, got %d", cfg.Telegram.PollLimit)
	}
	if cfg.Auth.TokenTTLMinutes != 60 {
		t.Errorf("expected token ttl 60, got %d", cfg.Auth.TokenTTLMinutes)
	}
	if cfg.Uploads.MaxBytes != 10<<20 {
		t.Errorf("expected max upload 10MiB, got %d", cfg.Uploads.MaxBytes)
	}
}

func TestEnvOverride(t *testing.T) {
	os.Setenv("FOLIO_TELEGRAM_TOKEN", "env-token")
	defer os.Unsetenv("FOLIO_TELEGRAM_TOKEN")

	jsonData := `{
		"telegram": {
			"token": "file-token"
		}
	}`

	cfg, err := LoadFromReader(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}

	if cfg.Telegram.Token != "env-token" {
		t.Errorf("expected env override env-token, got %s", cfg.Telegram.Token)
	}
}

func TestTelegramEnabled(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		chatID string
		want   bool
	}{
		{"both present", "123:abc", "5551234", true},
		{"missing token", "", "5551234", false},
		{"missing chat id", "123:abc", "", false},
		{"both missing", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := TelegramConfig{Token: tc.token, ChatID: tc.chatID}
			if got := c.Enabled(); got != tc.want {
				t.Errorf("Enabled() = %v, want %v", got, tc.want)
			}
		})
	}
}
