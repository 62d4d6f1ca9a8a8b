package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the service config file.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port             string `yaml:"port"`
	LogLevel         string `yaml:"logLevel"`
	StorageDriver    string `yaml:"storageDriver"`
	DatabaseURL      string `yaml:"databaseURL"`
	JWTSecret        string `yaml:"jwtSecret"`
	SessionTTLHours  int    `yaml:"sessionTTLHours"`
	ChatMode         string `yaml:"chatMode"`
	ChatHistoryLimit int    `yaml:"chatHistoryLimit"`
	LLMBaseURL       string `yaml:"llmBaseURL"`
	LLMAPIKey        string `yaml:"llmAPIKey"`
	LLMModel         string `yaml:"llmModel"`
	RedisAddr        string `yaml:"redisAddr"`
	RateLimitPerMin  int    `yaml:"rateLimitPerMin"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("CHAT_MODE"); v != "" {
		cfg.ChatMode = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwtSecret is required (set in config.yaml or JWT_SECRET)")
	}
	switch cfg.StorageDriver {
	case "postgres", "sqlite":
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("config: databaseURL is required for storageDriver %q (set in config.yaml or DATABASE_URL)", cfg.StorageDriver)
		}
	case "memory":
	default:
		return fmt.Errorf("config: storageDriver must be postgres, sqlite, or memory, got %q", cfg.StorageDriver)
	}
	switch cfg.ChatMode {
	case "api", "assistant":
	default:
		return fmt.Errorf("config: chatMode must be api or assistant, got %q", cfg.ChatMode)
	}
	if cfg.LLMAPIKey != "" && (cfg.LLMBaseURL == "" || cfg.LLMModel == "") {
		return errors.New("config: llmBaseURL and llmModel are required when an LLM api key is set")
	}
	if cfg.SessionTTLHours < 0 {
		return errors.New("config: sessionTTLHours must not be negative")
	}
	if cfg.ChatHistoryLimit < 0 {
		return errors.New("config: chatHistoryLimit must not be negative")
	}
	if cfg.RateLimitPerMin < 0 {
		return errors.New("config: rateLimitPerMin must not be negative")
	}
	if cfg.RateLimitPerMin > 0 && cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required when rateLimitPerMin is set")
	}
	return nil
}
