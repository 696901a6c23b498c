// Package main starts the portfolio site backend: REST API, visitor
// tracking, analytics rollups and the optional Telegram chat bridge.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/dkoroban/folio/internal/analytics"
	"github.com/dkoroban/folio/internal/bus"
	"github.com/dkoroban/folio/internal/config"
	"github.com/dkoroban/folio/internal/handler"
	"github.com/dkoroban/folio/internal/kv"
	"github.com/dkoroban/folio/internal/store"
	"github.com/dkoroban/folio/internal/telegram"
	"github.com/dkoroban/folio/internal/track"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwtSecret is empty; admin login is effectively disabled")
	}

	// database
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.Migrate(cfg.Database.URL, "migrations"); err != nil {
		return err
	}
	db := store.New(pool)

	// event bus + session tracking
	eventBus := bus.NewEventBus(100)
	go eventBus.Dispatch(ctx)
	defer eventBus.Close()

	var kvStore kv.Store = kv.NewMemoryStore()
	if cfg.Tracking.DataDir != "" {
		kvStore = kv.NewFileStore(cfg.Tracking.DataDir)
	}
	tracker := track.NewTracker(kvStore)
	tracker.Wire(eventBus)

	stats := analytics.NewService(tracker, kvStore)
	if err := stats.Start(); err != nil {
		return err
	}
	defer stats.Stop()

	// chat bridge
	var bridge handler.ChatBridge
	if cfg.Telegram.Enabled() {
		chatID, err := strconv.ParseInt(cfg.Telegram.ChatID, 10, 64)
		if err != nil {
			return errors.New("telegram.chatId must be a numeric chat id")
		}
		b := telegram.NewBridge(telegram.Config{
			API:          telegram.NewClient(cfg.Telegram.Token),
			ChatID:       chatID,
			Bus:          eventBus,
			PollInterval: time.Duration(cfg.Telegram.PollIntervalSeconds) * time.Second,
			PollLimit:    cfg.Telegram.PollLimit,
			HistoryLimit: cfg.Telegram.HistoryLimit,
		})
		defer b.Close()
		bridge = b
		slog.Info("telegram bridge configured", "chat_id", chatID)
	} else {
		slog.Info("telegram bridge disabled; chat endpoints will report unavailable")
	}

	h := handler.New(handler.Config{
		Store:      db,
		Bridge:     bridge,
		Tracker:    tracker,
		Analytics:  stats,
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
		UploadsDir: cfg.Uploads.Dir,
		MaxUpload:  cfg.Uploads.MaxBytes,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	handler.RegisterRoutes(r, h)

	server := &http.Server{
		Addr:              cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
