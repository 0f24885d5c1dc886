package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/synth"
)

// DefaultInterval is used when the caller names no interval or an unknown one.
const DefaultInterval = "1h"

var intervalSteps = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// IntervalStep returns the spacing for a named interval and the normalized
// interval name. Unknown intervals resolve to one hour.
func IntervalStep(interval string) (time.Duration, string) {
	if step, ok := intervalSteps[interval]; ok {
		return step, interval
	}
	return time.Hour, DefaultInterval
}

// PriceHistory returns the upstream price series for a market when the CLOB
// has one, otherwise limit synthesized points spaced by interval and ending
// now.
func (s *MarketService) PriceHistory(ctx context.Context, id, interval string, limit int) domain.PriceHistory {
	step, interval := IntervalStep(interval)

	points, err := s.clob.GetPriceHistory(ctx, id, interval, limit)
	if err != nil {
		s.logger.DebugContext(ctx, "price history unavailable, synthesizing",
			slog.String("market_id", id),
			slog.String("interval", interval),
			slog.String("error", err.Error()),
		)
		points = synth.PriceHistory(id, limit, step, s.now())
	}

	return domain.PriceHistory{
		MarketID: id,
		Interval: interval,
		Data:     points,
	}
}
