package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load loads config from the default path (./config.json). A missing file is
// not an error: defaults plus env overrides apply.
func Load() (*Config, error) {
	f, err := os.Open("config.json")
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromFile loads config from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader loads config from an io.Reader, applying defaults and env
// overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	if err := json.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies FOLIO_-prefixed environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	envMap := map[string]*string{
		"FOLIO_DATABASE_URL":     &cfg.Database.URL,
		"FOLIO_TELEGRAM_TOKEN":   &cfg.Telegram.Token,
		"FOLIO_TELEGRAM_CHATID":  &cfg.Telegram.ChatID,
		"FOLIO_AUTH_JWTSECRET":   &cfg.Auth.JWTSecret,
		"FOLIO_TRACKING_DATADIR": &cfg.Tracking.DataDir,
		"FOLIO_UPLOADS_DIR":      &cfg.Uploads.Dir,
		"FOLIO_SERVER_HOST":      &cfg.Server.Host,
	}

	for env, ptr := range envMap {
		if val := os.Getenv(env); val != "" {
			*ptr = val
		}
	}
}
