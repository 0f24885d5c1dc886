// Package config defines the top-level configuration for the polydash API
// server and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYDASH_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Redis      RedisConfig      `toml:"redis"`
	Server     ServerConfig     `toml:"server"`
	History    HistoryConfig    `toml:"history"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the upstream API endpoints and client tuning.
type PolymarketConfig struct {
	ClobHost        string   `toml:"clob_host"`
	GammaHost       string   `toml:"gamma_host"`
	RequestTimeout  duration `toml:"request_timeout"`
	BookConcurrency int      `toml:"book_concurrency"`
}

// RedisConfig holds Redis connection parameters. Redis backs the shared rate
// limiter only and is not dialed unless rate limiting is enabled.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	KeyPrefix  string `toml:"key_prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port             int             `toml:"port"`
	CORSOrigins      []string        `toml:"cors_origins"`
	APIKey           string          `toml:"api_key"`
	StreamInterval   duration        `toml:"stream_interval"`
	ListDefaultLimit int             `toml:"list_default_limit"`
	ListMaxLimit     int             `toml:"list_max_limit"`
	ShutdownTimeout  duration        `toml:"shutdown_timeout"`
	RateLimit        RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls the optional per-client request limit.
type RateLimitConfig struct {
	Enabled  bool     `toml:"enabled"`
	Requests int      `toml:"requests"`
	Window   duration `toml:"window"`
}

// HistoryConfig controls price history defaults.
type HistoryConfig struct {
	DefaultInterval string `toml:"default_interval"`
	DefaultLimit    int    `toml:"default_limit"`
	MaxLimit        int    `toml:"max_limit"`
	// DetailPoints is the length of the synthesized daily series embedded in
	// a detail record that has no upstream history.
	DetailPoints int `toml:"detail_points"`
}

// Defaults returns a Config populated with sensible default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost:        "https://clob.polymarket.com",
			GammaHost:       "https://gamma-api.polymarket.com",
			RequestTimeout:  duration{10 * time.Second},
			BookConcurrency: 8,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
			KeyPrefix:  "polydash",
		},
		Server: ServerConfig{
			Port:             8000,
			CORSOrigins:      []string{"http://localhost:3000", "http://localhost:5173"},
			StreamInterval:   duration{5 * time.Second},
			ListDefaultLimit: 20,
			ListMaxLimit:     100,
			ShutdownTimeout:  duration{10 * time.Second},
			RateLimit: RateLimitConfig{
				Enabled:  false,
				Requests: 120,
				Window:   duration{time.Minute},
			},
		},
		History: HistoryConfig{
			DefaultInterval: "1h",
			DefaultLimit:    24,
			MaxLimit:        1000,
			DetailPoints:    30,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validIntervals enumerates the accepted history intervals.
var validIntervals = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "4h": true, "6h": true, "12h": true,
	"1d": true, "1w": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Polymarket endpoints
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.RequestTimeout.Duration <= 0 {
		errs = append(errs, "polymarket: request_timeout must be > 0")
	}
	if c.Polymarket.BookConcurrency < 1 {
		errs = append(errs, "polymarket: book_concurrency must be >= 1")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.StreamInterval.Duration < time.Second {
		errs = append(errs, "server: stream_interval must be >= 1s")
	}
	if c.Server.ListDefaultLimit < 1 {
		errs = append(errs, "server: list_default_limit must be >= 1")
	}
	if c.Server.ListMaxLimit < c.Server.ListDefaultLimit {
		errs = append(errs, "server: list_max_limit must not be below list_default_limit")
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.Requests < 1 {
			errs = append(errs, "server.rate_limit: requests must be >= 1 when enabled")
		}
		if c.Server.RateLimit.Window.Duration <= 0 {
			errs = append(errs, "server.rate_limit: window must be > 0 when enabled")
		}
		// Redis is only required when it will actually be dialed.
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when rate limiting is enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// History
	if !validIntervals[c.History.DefaultInterval] {
		errs = append(errs, fmt.Sprintf("history: unknown default_interval %q", c.History.DefaultInterval))
	}
	if c.History.DefaultLimit < 1 {
		errs = append(errs, "history: default_limit must be >= 1")
	}
	if c.History.MaxLimit < c.History.DefaultLimit {
		errs = append(errs, "history: max_limit must not be below default_limit")
	}
	if c.History.DetailPoints < 2 {
		errs = append(errs, "history: detail_points must be >= 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
