package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/polydash/internal/cache/redis"
	"github.com/alanyoungcy/polydash/internal/config"
	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/platform/polymarket"
)

// Dependencies bundles the concrete clients the server needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Gamma *polymarket.GammaClient
	Clob  *polymarket.ClobClient

	// RateLimiter is nil unless server.rate_limit.enabled is set.
	RateLimiter domain.RateLimiter
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	timeout := cfg.Polymarket.RequestTimeout.Duration
	deps := &Dependencies{
		Gamma: polymarket.NewGammaClient(cfg.Polymarket.GammaHost, timeout),
		Clob:  polymarket.NewClobClient(cfg.Polymarket.ClobHost, timeout),
	}

	// --- Redis (only when the shared rate limiter is enabled) ---
	if cfg.Server.RateLimit.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.RateLimiter = redis.NewRateLimiter(redisClient, cfg.Redis.KeyPrefix)
		logger.InfoContext(ctx, "rate limiter enabled",
			slog.String("redis_addr", cfg.Redis.Addr),
			slog.Int("requests", cfg.Server.RateLimit.Requests),
			slog.Duration("window", cfg.Server.RateLimit.Window.Duration),
		)
	}

	return deps, cleanup, nil
}
