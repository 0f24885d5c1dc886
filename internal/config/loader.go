package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYDASH_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults
// plus environment. The returned Config has NOT been validated; the caller
// should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYDASH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.ClobHost, "POLYDASH_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "POLYDASH_POLYMARKET_GAMMA_HOST")
	setDuration(&cfg.Polymarket.RequestTimeout, "POLYDASH_POLYMARKET_REQUEST_TIMEOUT")
	setInt(&cfg.Polymarket.BookConcurrency, "POLYDASH_POLYMARKET_BOOK_CONCURRENCY")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "POLYDASH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYDASH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYDASH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYDASH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYDASH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYDASH_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "POLYDASH_REDIS_KEY_PREFIX")

	// ── Server ──
	setInt(&cfg.Server.Port, "POLYDASH_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYDASH_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "POLYDASH_SERVER_API_KEY")
	setDuration(&cfg.Server.StreamInterval, "POLYDASH_SERVER_STREAM_INTERVAL")
	setInt(&cfg.Server.ListDefaultLimit, "POLYDASH_SERVER_LIST_DEFAULT_LIMIT")
	setInt(&cfg.Server.ListMaxLimit, "POLYDASH_SERVER_LIST_MAX_LIMIT")
	setDuration(&cfg.Server.ShutdownTimeout, "POLYDASH_SERVER_SHUTDOWN_TIMEOUT")
	setBool(&cfg.Server.RateLimit.Enabled, "POLYDASH_SERVER_RATE_LIMIT_ENABLED")
	setInt(&cfg.Server.RateLimit.Requests, "POLYDASH_SERVER_RATE_LIMIT_REQUESTS")
	setDuration(&cfg.Server.RateLimit.Window, "POLYDASH_SERVER_RATE_LIMIT_WINDOW")

	// ── History ──
	setStr(&cfg.History.DefaultInterval, "POLYDASH_HISTORY_DEFAULT_INTERVAL")
	setInt(&cfg.History.DefaultLimit, "POLYDASH_HISTORY_DEFAULT_LIMIT")
	setInt(&cfg.History.MaxLimit, "POLYDASH_HISTORY_MAX_LIMIT")
	setInt(&cfg.History.DetailPoints, "POLYDASH_HISTORY_DETAIL_POINTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "POLYDASH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
