package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg := Load()
	if cfg.Port != "8080" || cfg.Store != "sqlite" || cfg.RateLimitPerMinute != 20 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TelegramEnabled() {
		t.Fatal("telegram must be disabled without token and chat id")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "redis")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg := Load()
	if cfg.Port != "9090" || cfg.Store != "redis" || cfg.RateLimitPerMinute != 5 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TelegramChatID != -100123 || !cfg.TelegramEnabled() {
		t.Fatalf("telegram chat id = %d", cfg.TelegramChatID)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	cfg := Load()
	if cfg.RateLimitPerMinute != 20 {
		t.Fatalf("RateLimitPerMinute = %d", cfg.RateLimitPerMinute)
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "RATE_LIMIT_PER_MINUTE") {
		t.Fatalf("Warnings = %q", cfg.Warnings)
	}
}

func TestLoad_BadTelegramChatIDWarns(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "@pharmacy")

	cfg := Load()
	if cfg.TelegramChatID != 0 || cfg.TelegramEnabled() {
		t.Fatalf("telegram chat id = %d", cfg.TelegramChatID)
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "TELEGRAM_CHAT_ID") {
		t.Fatalf("Warnings = %q", cfg.Warnings)
	}
}

func TestLoad_ProductionRequiresKey(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LLM_API_KEY", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Load()
}
