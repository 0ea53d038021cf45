package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(flagValues{envFile: "nonexistent.env"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Errorf("Environment: got %q, want %q", cfg.App.Environment, "development")
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Level: got %q, want %q", cfg.Logger.Level, "info")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout: got %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Auth.AccessTokenDuration != 15*time.Minute {
		t.Errorf("AccessTokenDuration: got %v, want 15m", cfg.Auth.AccessTokenDuration)
	}
	if cfg.Auth.RefreshTokenDuration != 720*time.Hour {
		t.Errorf("RefreshTokenDuration: got %v, want 720h", cfg.Auth.RefreshTokenDuration)
	}
}

func TestLoadConfigFlagsWin(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")

	fv := parseFlags([]string{"--port", "9999", "--env=production"})
	fv.envFile = "nonexistent.env"
	cfg, err := loadConfig(fv)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("flag should beat env var: got %q, want %q", cfg.Server.Port, "9999")
	}
	if cfg.App.Environment != "production" {
		t.Errorf("Environment: got %q, want %q", cfg.App.Environment, "production")
	}
}

func TestLoadConfigEnvVars(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ACCESS_TOKEN_DURATION", "30m")

	cfg, err := loadConfig(flagValues{envFile: "nonexistent.env"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Logger.Level != "debug" {
		t.Errorf("Level: got %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.Auth.AccessTokenDuration != 30*time.Minute {
		t.Errorf("AccessTokenDuration: got %v, want 30m", cfg.Auth.AccessTokenDuration)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	if _, err := loadConfig(flagValues{envFile: "nonexistent.env"}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
