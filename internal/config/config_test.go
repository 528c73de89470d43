package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-with-enough-length-123"

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"JWT_SECRET", "SERVER_ADDR", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "PRESENCE_TIMEOUT",
		"COOKIE_SECURE", "RATE_LIMIT_ENABLED",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("JWT_SECRET", testSecret)
	defer os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 15*time.Minute)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want %v", cfg.RefreshTokenTTL, 7*24*time.Hour)
	}
	if cfg.PresenceTimeout != 3*time.Second {
		t.Errorf("PresenceTimeout = %v, want %v", cfg.PresenceTimeout, 3*time.Second)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting should default to enabled")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	clearEnv(t)

	if _, err := Load(); err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	clearEnv(t)
	os.Setenv("JWT_SECRET", "too-short")
	defer os.Unsetenv("JWT_SECRET")

	if _, err := Load(); err == nil {
		t.Error("Load should fail for a JWT_SECRET under 32 characters")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	os.Setenv("JWT_SECRET", testSecret)
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("ACCESS_TOKEN_TTL", "30m")
	os.Setenv("PRESENCE_TIMEOUT", "5s")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 30*time.Minute)
	}
	if cfg.PresenceTimeout != 5*time.Second {
		t.Errorf("PresenceTimeout = %v, want %v", cfg.PresenceTimeout, 5*time.Second)
	}
}
