package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/platform/polymarket"
	"github.com/alanyoungcy/polydash/internal/synth"
)

const categoryOther = "Other"

// categorySlugs is the whitelist of tag slugs that map to a display category.
var categorySlugs = map[string]bool{
	"crypto":        true,
	"politics":      true,
	"sports":        true,
	"entertainment": true,
	"health":        true,
	"technology":    true,
	"economics":     true,
}

// ListMarkets fetches one page of events, flattens their markets, keeps only
// markets that are open for trading, and maps them to summaries. An upstream
// failure is returned as-is; callers serve SampleMarkets in that case.
func (s *MarketService) ListMarkets(ctx context.Context, q domain.ListQuery) (domain.MarketList, error) {
	events, err := s.gamma.GetEvents(ctx, polymarket.EventQuery{
		Limit:  q.Limit,
		Offset: q.Offset,
		Closed: q.Closed || !q.Active,
		Tag:    q.Tag,
		Search: q.Search,
	})
	if err != nil {
		return domain.MarketList{}, fmt.Errorf("market_service: list markets: %w", err)
	}

	var all []domain.Market
	for i := range events {
		all = append(all, events[i].ToDomainMarkets()...)
	}

	now := s.now()
	summaries := make([]domain.MarketSummary, 0, len(all))
	for _, m := range all {
		if !acceptable(m, now) {
			continue
		}
		summaries = append(summaries, summarize(m))
	}

	s.logger.DebugContext(ctx, "listed markets",
		slog.Int("events", len(events)),
		slog.Int("markets", len(all)),
		slog.Int("accepted", len(summaries)),
	)

	return domain.MarketList{Markets: summaries, Total: len(summaries)}, nil
}

// acceptable applies the post-fetch filter: explicitly active, explicitly not
// closed, explicitly accepting orders, and an end date strictly after now.
// It runs even though the upstream query already filtered on closed.
func acceptable(m domain.Market, now time.Time) bool {
	if m.Active == nil || !*m.Active {
		return false
	}
	if m.Closed == nil || *m.Closed {
		return false
	}
	if m.AcceptingOrders == nil || !*m.AcceptingOrders {
		return false
	}
	end, ok := parseEndDate(m.EndDate)
	return ok && end.After(now)
}

var endDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

func parseEndDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Category returns the label of the first event tag whose slug is on the
// category whitelist, or "Other".
func Category(tags []domain.Tag) string {
	for _, t := range tags {
		if categorySlugs[strings.ToLower(t.Slug)] {
			if t.Label != "" {
				return t.Label
			}
			return t.Slug
		}
	}
	return categoryOther
}

func summarize(m domain.Market) domain.MarketSummary {
	price := synth.DefaultPrice
	if len(m.Outcomes) > 0 {
		price = priceOr(m.Outcomes[0].Price, synth.DefaultPrice)
	}

	outcomes := make([]string, 0, len(m.Outcomes))
	for _, o := range m.Outcomes {
		outcomes = append(outcomes, o.Label)
	}
	if len(outcomes) == 0 {
		outcomes = []string{"Yes", "No"}
	}

	return domain.MarketSummary{
		ID:             firstNonEmpty(m.ID, m.ConditionID),
		Name:           firstNonEmpty(m.Question, m.EventTitle, "Unknown Market"),
		Description:    firstNonEmpty(m.Description, "No description available"),
		Category:       Category(m.EventTags),
		CurrentPrice:   price,
		PriceChange24h: m.PriceChange24h,
		Volume24h:      m.Volume24h,
		Liquidity:      m.Liquidity,
		EndDate:        m.EndDate,
		Probability:    probability(price),
		Active:         true,
		Closed:         false,
		Outcomes:       outcomes,
		Slug:           m.Slug,
		Tags:           tagNames(m.EventTags),
		Image:          firstNonEmpty(m.EventImage, m.Image),
		Icon:           firstNonEmpty(m.EventIcon, m.Icon),
	}
}
