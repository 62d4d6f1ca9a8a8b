package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"surefile/internal/app"
	"surefile/internal/config"
	"surefile/internal/ratelimit"
	"surefile/internal/server"
	"surefile/internal/store"
	"surefile/internal/util"
	"surefile/pkg/ai"
)

func main() {
	// .env is optional, env vars still override config.yaml either way
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel)

	records, conversations, err := buildStores(cfg)
	if err != nil {
		util.Fatal("failed to init storage", "err", err)
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions, err := store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL)
	if err != nil {
		util.Fatal("failed to init sessions", "err", err)
	}

	var generator ai.TextGenerator
	if cfg.LLMAPIKey == "" {
		slog.Warn("no LLM api key configured, using mock generator")
		generator = ai.NewMockGenerator()
	} else {
		generator = ai.NewOpenAICompatGenerator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, 0)
	}

	appCore, err := app.New(app.Config{
		Store:         records,
		Conversations: conversations,
		Sessions:      sessions,
		Generator:     generator,
		HistoryLimit:  cfg.ChatHistoryLimit,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RateLimitPerMin > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, "", "surefile:ratelimit", cfg.RateLimitPerMin, time.Minute)
		if err != nil {
			util.Fatal("failed to init rate limiter", "err", err)
		}
	}

	httpServer := server.New(server.Config{
		App:      appCore,
		ChatMode: server.ChatMode(cfg.ChatMode),
		Limiter:  limiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("surefile server listening", "addr", addr, "chatMode", cfg.ChatMode, "storage", cfg.StorageDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
	}
}

func buildStores(cfg config.FileConfig) (store.Store, store.ConversationStore, error) {
	switch cfg.StorageDriver {
	case "memory":
		return store.NewMemoryStore(), store.NewMemoryConversationStore(), nil
	default:
		g, err := store.NewGormStore(cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	}
}
