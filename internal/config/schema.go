package config

// Config is the top-level configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Telegram  TelegramConfig  `json:"telegram"`
	Auth      AuthConfig      `json:"auth"`
	Tracking  TrackingConfig  `json:"tracking"`
	Uploads   UploadsConfig   `json:"uploads"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type DatabaseConfig struct {
	URL string `json:"url"`
}

// TelegramConfig configures the chat bridge. When Token or ChatID is empty
// the bridge stays disabled and the widget endpoints report unavailable.
type TelegramConfig struct {
	Token               string `json:"token"`
	ChatID              string `json:"chatId"`
	PollIntervalSeconds int    `json:"pollIntervalSeconds"`
	PollLimit           int    `json:"pollLimit"`
	HistoryLimit        int    `json:"historyLimit"`
}

// Enabled reports whether both credentials are present.
func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != ""
}

type AuthConfig struct {
	JWTSecret       string `json:"jwtSecret"`
	TokenTTLMinutes int    `json:"tokenTtlMinutes"`
}

// TrackingConfig points the session tracker and analytics rollups at a
// data directory. Empty means in-memory only.
type TrackingConfig struct {
	DataDir string `json:"dataDir"`
}

type UploadsConfig struct {
	Dir      string `json:"dir"`
	MaxBytes int64  `json:"maxBytes"`
}

// DefaultConfig returns the baseline configuration before file and env
// overrides.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Telegram: TelegramConfig{
			PollIntervalSeconds: 3,
			PollLimit:           10,
			HistoryLimit:        20,
		},
		Auth: AuthConfig{
			TokenTTLMinutes: 60,
		},
		Tracking: TrackingConfig{
			DataDir: "data",
		},
		Uploads: UploadsConfig{
			Dir:      "uploads",
			MaxBytes: 10 << 20,
		},
	}
}
