package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("CHAT_MODE", "assistant")

	cfgPath := writeTestConfig(t, `
port: "8080"
logLevel: "info"
storageDriver: "memory"
jwtSecret: "file-secret"
chatMode: "api"
llmBaseURL: "https://api.groq.com/openai/v1"
llmModel: "llama-3.3-70b-versatile"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q, want env override", cfg.Port)
	}
	if cfg.JWTSecret != "env-secret" {
		t.Fatalf("jwtSecret = %q, want env override", cfg.JWTSecret)
	}
	if cfg.LLMAPIKey != "env-key" {
		t.Fatalf("llmAPIKey = %q, want env override", cfg.LLMAPIKey)
	}
	if cfg.ChatMode != "assistant" {
		t.Fatalf("chatMode = %q, want env override", cfg.ChatMode)
	}
}

func TestValidateConfigRejectsMissingJWTSecret(t *testing.T) {
	cfg := FileConfig{
		Port:          "8080",
		StorageDriver: "memory",
		ChatMode:      "api",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for missing jwtSecret")
	}
}

func TestValidateConfigRejectsUnknownStorageDriver(t *testing.T) {
	cfg := FileConfig{
		Port:          "8080",
		JWTSecret:     "s",
		StorageDriver: "mongodb",
		ChatMode:      "api",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for unknown storageDriver")
	}
}

func TestValidateConfigRequiresDatabaseURLForDBDrivers(t *testing.T) {
	cfg := FileConfig{
		Port:          "8080",
		JWTSecret:     "s",
		StorageDriver: "postgres",
		ChatMode:      "api",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for missing databaseURL")
	}
}

func TestValidateConfigRejectsUnknownChatMode(t *testing.T) {
	cfg := FileConfig{
		Port:          "8080",
		JWTSecret:     "s",
		StorageDriver: "memory",
		ChatMode:      "streaming",
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for unknown chatMode")
	}
}

func TestValidateConfigRequiresRedisForRateLimit(t *testing.T) {
	cfg := FileConfig{
		Port:            "8080",
		JWTSecret:       "s",
		StorageDriver:   "memory",
		ChatMode:        "api",
		RateLimitPerMin: 30,
	}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for rate limit without redisAddr")
	}
}
