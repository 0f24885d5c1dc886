package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/polydash/internal/domain"
)

// marketSource is one fallback tier for the detail resolver.
type marketSource struct {
	name  string
	fetch func(ctx context.Context, id string) (domain.Market, error)
}

// resolved is the outcome of walking the source chain.
type resolved struct {
	market domain.Market
	source string
}

// resolveBase tries each source in order; the first success supplies the base
// market and the remaining sources are consulted only to fill display fields
// the base left empty, unless enrich is false. Tiers run strictly one after
// another.
func (s *MarketService) resolveBase(ctx context.Context, id string, enrich bool) (resolved, error) {
	unavailable := &UnavailableError{}
	for i, src := range s.sources {
		m, err := src.fetch(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "market source failed",
				slog.String("market_id", id),
				slog.String("source", src.name),
				slog.String("error", err.Error()),
			)
			unavailable.Sources = append(unavailable.Sources, src.name)
			unavailable.Causes = append(unavailable.Causes, err)
			continue
		}
		if enrich {
			s.enrich(ctx, id, &m, s.sources[i+1:])
		}
		return resolved{market: m, source: src.name}, nil
	}
	return resolved{}, unavailable
}

// UnavailableError reports that every detail source failed. Its message names
// the sources only; upstream response bodies stay in the per-source logs and
// are reachable through errors.Is and errors.As on Causes.
type UnavailableError struct {
	Sources []string
	Causes  []error
}

func (e *UnavailableError) Error() string {
	if len(e.Sources) == 0 {
		return domain.ErrUpstream.Error() + ": no sources configured"
	}
	return domain.ErrUpstream.Error() + ": " + strings.Join(e.Sources, ", ") + " failed"
}

func (e *UnavailableError) Unwrap() []error {
	return append([]error{domain.ErrUpstream}, e.Causes...)
}

// enrich fills empty description, tags, category, image, and icon from the
// later sources. Lookups after the base use the condition ID when known.
func (s *MarketService) enrich(ctx context.Context, id string, m *domain.Market, rest []marketSource) {
	key := m.ConditionID
	if key == "" {
		key = id
	}
	for _, src := range rest {
		if !needsEnrichment(m) {
			return
		}
		extra, err := src.fetch(ctx, key)
		if err != nil {
			s.logger.DebugContext(ctx, "enrichment source failed",
				slog.String("market_id", id),
				slog.String("source", src.name),
				slog.String("error", err.Error()),
			)
			continue
		}
		mergeMissing(m, extra)
	}
}

func needsEnrichment(m *domain.Market) bool {
	return m.Description == "" || len(m.Tags) == 0 || m.Category == "" || m.Image == "" || m.Icon == ""
}

// mergeMissing copies fields from extra into m only where m is empty.
func mergeMissing(m *domain.Market, extra domain.Market) {
	if m.Description == "" {
		m.Description = extra.Description
	}
	if len(m.Tags) == 0 {
		m.Tags = extra.Tags
	}
	if m.Category == "" {
		m.Category = extra.Category
	}
	if m.Image == "" {
		m.Image = extra.Image
	}
	if m.Icon == "" {
		m.Icon = extra.Icon
	}
	if m.ConditionID == "" {
		m.ConditionID = extra.ConditionID
	}
	if len(m.Outcomes) == 0 {
		m.Outcomes = extra.Outcomes
	}
}
