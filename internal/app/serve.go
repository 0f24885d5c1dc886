package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polydash/internal/server"
	"github.com/alanyoungcy/polydash/internal/server/handler"
	"github.com/alanyoungcy/polydash/internal/server/ws"
	"github.com/alanyoungcy/polydash/internal/service"
	"golang.org/x/sync/errgroup"
)

// Serve builds the market service and HTTP server on top of deps and runs
// the server until ctx is cancelled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context, deps *Dependencies) error {
	markets := service.NewMarketService(deps.Gamma, deps.Clob, service.Options{
		DetailHistoryPoints: a.cfg.History.DetailPoints,
		BookConcurrency:     a.cfg.Polymarket.BookConcurrency,
	}, a.logger)

	stream := ws.NewStream(markets, ws.Config{
		Interval:       a.cfg.Server.StreamInterval.Duration,
		AllowedOrigins: a.cfg.Server.CORSOrigins,
	}, a.logger)

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(stream),
		Markets: handler.NewMarketHandler(markets, handler.MarketOptions{
			ListDefaultLimit:    a.cfg.Server.ListDefaultLimit,
			ListMaxLimit:        a.cfg.Server.ListMaxLimit,
			HistoryDefaultLimit: a.cfg.History.DefaultLimit,
			HistoryMaxLimit:     a.cfg.History.MaxLimit,
			DefaultInterval:     a.cfg.History.DefaultInterval,
		}, a.logger),
		Stream: stream,
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimiter:     deps.RateLimiter,
		RateLimitMax:    a.cfg.Server.RateLimit.Requests,
		RateLimitWindow: a.cfg.Server.RateLimit.Window.Duration,
	}, handlers, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfoContext(gctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)))
		return srv.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := a.cfg.Server.ShutdownTimeout.Duration
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
