package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Preference store
	Store          string // sqlite, postgres, redis or memory
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string
	MigrationsPath string

	// Remote collaborators
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModel          string
	STTURL            string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModel   string

	// Prescription delivery
	TelegramBotToken string
	TelegramChatID   int64
	PDFFontPath      string

	// Turns accepted per device per minute; 0 disables limiting.
	RateLimitPerMinute int

	// Warnings lists malformed values that were replaced by defaults.
	Warnings []string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		Store:             getEnv("STORE", "sqlite"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/intake.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "migrations"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMBaseURL:        os.Getenv("LLM_BASE_URL"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		STTURL:            os.Getenv("STT_URL"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsModel:   os.Getenv("ELEVENLABS_MODEL"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		PDFFontPath:       os.Getenv("PDF_FONT_PATH"),
	}
	cfg.RateLimitPerMinute = int(cfg.getEnvInt("RATE_LIMIT_PER_MINUTE", 20))
	cfg.TelegramChatID = cfg.getEnvInt("TELEGRAM_CHAT_ID", 0)

	if cfg.Env == "production" {
		if cfg.LLMAPIKey == "" {
			panic("LLM_API_KEY is required in production")
		}
		if cfg.Store == "postgres" && cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required when STORE=postgres")
		}
		if cfg.Store == "redis" && cfg.RedisURL == "" {
			panic("REDIS_URL is required when STORE=redis")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// TelegramEnabled reports whether prescriptions can be delivered to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvInt(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not an integer, using %d", key, value, defaultValue))
		return defaultValue
	}
	return n
}
