package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BOOKING_BUFFER_MINUTES", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BookingBufferMinutes != 30 {
		t.Fatalf("expected default booking buffer 30, got %d", cfg.BookingBufferMinutes)
	}
	if cfg.TaxRatePercent != 10 {
		t.Fatalf("expected default tax rate 10, got %v", cfg.TaxRatePercent)
	}
	if cfg.PriceSplitMode != "quote" {
		t.Fatalf("expected default price split mode quote, got %s", cfg.PriceSplitMode)
	}
	if cfg.SettingsCacheTTL != 5*time.Minute {
		t.Fatalf("expected default settings cache TTL, got %s", cfg.SettingsCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("BOOKING_BUFFER_MINUTES", "45")
	t.Setenv("ALTERNATE_PROBE_DAYS", "14")
	t.Setenv("PRICE_SPLIT_MODE", "DAY")
	t.Setenv("SETTINGS_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://app.example.com")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.BookingBufferMinutes != 45 {
		t.Fatalf("expected buffer override, got %d", cfg.BookingBufferMinutes)
	}
	if cfg.AlternateProbeDays != 14 {
		t.Fatalf("expected probe days override, got %d", cfg.AlternateProbeDays)
	}
	if cfg.PriceSplitMode != "day" {
		t.Fatalf("expected price split mode normalized to day, got %s", cfg.PriceSplitMode)
	}
	if cfg.SettingsCacheTTL != 90*time.Second {
		t.Fatalf("expected TTL override, got %s", cfg.SettingsCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}
