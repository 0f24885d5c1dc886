package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "chatty"
	cfg.Server.Port = 0
	cfg.History.DefaultInterval = "2h"
	cfg.Server.RateLimit.Enabled = true
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"log_level", "port", "default_interval", "redis: addr"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestValidateIgnoresRedisWhenRateLimitDisabled(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Addr = ""
	cfg.Redis.PoolSize = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("redis settings should not matter: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
log_level = "debug"

[polymarket]
gamma_host = "http://gamma.test"
request_timeout = "3s"

[server]
port = 9090
stream_interval = "2s"

[server.rate_limit]
enabled = true
window = "30s"

[history]
default_interval = "1d"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.Polymarket.GammaHost != "http://gamma.test" {
		t.Errorf("top-level values not decoded: %+v", cfg)
	}
	if cfg.Polymarket.RequestTimeout.Duration != 3*time.Second {
		t.Errorf("request_timeout = %v", cfg.Polymarket.RequestTimeout.Duration)
	}
	if cfg.Server.Port != 9090 || cfg.Server.StreamInterval.Duration != 2*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.Window.Duration != 30*time.Second {
		t.Errorf("rate_limit = %+v", cfg.Server.RateLimit)
	}
	// Unset keys keep their defaults.
	if cfg.Polymarket.ClobHost != "https://clob.polymarket.com" || cfg.Server.RateLimit.Requests != 120 {
		t.Errorf("defaults lost: clob=%q requests=%d", cfg.Polymarket.ClobHost, cfg.Server.RateLimit.Requests)
	}
	if cfg.History.DefaultInterval != "1d" || cfg.History.DetailPoints != 30 {
		t.Errorf("history = %+v", cfg.History)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POLYDASH_SERVER_PORT", "7000")
	t.Setenv("POLYDASH_SERVER_API_KEY", "k")
	t.Setenv("POLYDASH_SERVER_CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("POLYDASH_SERVER_RATE_LIMIT_ENABLED", "true")
	t.Setenv("POLYDASH_POLYMARKET_REQUEST_TIMEOUT", "750ms")
	t.Setenv("POLYDASH_HISTORY_DETAIL_POINTS", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7000 || cfg.Server.APIKey != "k" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if got := cfg.Server.CORSOrigins; len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("cors_origins = %v", got)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("rate limit should be enabled")
	}
	if cfg.Polymarket.RequestTimeout.Duration != 750*time.Millisecond {
		t.Errorf("request_timeout = %v", cfg.Polymarket.RequestTimeout.Duration)
	}
	if cfg.History.DetailPoints != 30 {
		t.Errorf("malformed override should be ignored, got %d", cfg.History.DetailPoints)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Server.APIKey = "key"

	out := RedactedConfig(&cfg)
	if out.Redis.Password != "***" || out.Server.APIKey != "***" {
		t.Errorf("secrets not redacted: %q %q", out.Redis.Password, out.Server.APIKey)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Error("original config was mutated")
	}

	out.Server.CORSOrigins[0] = "changed"
	if cfg.Server.CORSOrigins[0] == "changed" {
		t.Error("redacted copy shares the CORS slice")
	}
}
