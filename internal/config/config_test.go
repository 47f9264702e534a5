package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "postgres")
	t.Setenv("POSTGRES_PASSWORD", "postgres")
	t.Setenv("POSTGRES_DB", "tasks")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("JWT_SECRET", "test-secret-32-bytes-long-1234567890")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL default = %v, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL default = %v, want 168h", cfg.RefreshTokenTTL)
	}
	if cfg.LoginRateLimit != 5 {
		t.Errorf("LoginRateLimit default = %d, want 5", cfg.LoginRateLimit)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr should default to empty, got %q", cfg.RedisAddr)
	}
}

func TestLoadMissingVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("SERVER_PORT", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for missing vars, got none")
	}
	if !strings.Contains(err.Error(), "POSTGRES_HOST") || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error should name every missing var, got: %v", err)
	}
}

func TestLoadShortSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for short JWT_SECRET, got none")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("LOGIN_RATE_LIMIT", "10")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 5m", cfg.AccessTokenTTL)
	}
	if cfg.LoginRateLimit != 10 {
		t.Errorf("LoginRateLimit = %d, want 10", cfg.LoginRateLimit)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestDSN(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	expected := "host=localhost user=postgres password=postgres dbname=tasks port=5432 sslmode=disable"
	if got := cfg.DSN(); got != expected {
		t.Errorf("DSN = %q, want %q", got, expected)
	}
}
