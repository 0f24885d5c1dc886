package service

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/platform/polymarket"
	"github.com/alanyoungcy/polydash/internal/synth"
	"golang.org/x/sync/errgroup"
)

// GammaAPI is the subset of the Gamma client the market service uses.
type GammaAPI interface {
	GetEvents(ctx context.Context, q polymarket.EventQuery) ([]polymarket.APIEvent, error)
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	GetMarketByConditionID(ctx context.Context, conditionID string) (domain.Market, error)
}

// ClobAPI is the subset of the CLOB client the market service uses.
type ClobAPI interface {
	GetMarket(ctx context.Context, conditionID string) (domain.Market, error)
	GetBook(ctx context.Context, tokenID string) (domain.Orderbook, error)
	GetTrades(ctx context.Context, market string) ([]domain.Trade, error)
	GetPriceHistory(ctx context.Context, market, interval string, limit int) ([]domain.PricePoint, error)
}

// Options tunes the market service. Zero values fall back to defaults.
type Options struct {
	// DetailHistoryPoints is the number of trailing daily points synthesized
	// for a detail record without upstream history.
	DetailHistoryPoints int
	// BookConcurrency caps concurrent per-outcome order book fetches.
	BookConcurrency int
	// BookDepth is the number of levels per side in a placeholder book.
	BookDepth int
}

// MarketService resolves market records from the upstream services, falling
// back tier by tier and filling gaps with synthesized placeholders. It holds
// no per-request state and is safe for concurrent use.
type MarketService struct {
	gamma   GammaAPI
	clob    ClobAPI
	opts    Options
	sources []marketSource
	logger  *slog.Logger
	now     func() time.Time
}

// NewMarketService creates a MarketService with all required dependencies.
func NewMarketService(gamma GammaAPI, clob ClobAPI, opts Options, logger *slog.Logger) *MarketService {
	if opts.DetailHistoryPoints <= 0 {
		opts.DetailHistoryPoints = 30
	}
	if opts.BookConcurrency <= 0 {
		opts.BookConcurrency = 8
	}
	if opts.BookDepth <= 0 {
		opts.BookDepth = 5
	}
	s := &MarketService{
		gamma:  gamma,
		clob:   clob,
		opts:   opts,
		logger: logger.With(slog.String("component", "market_service")),
		now:    time.Now,
	}
	s.sources = []marketSource{
		{name: "gamma_index", fetch: gamma.GetMarket},
		{name: "gamma_metadata", fetch: gamma.GetMarketByConditionID},
		{name: "clob", fetch: clob.GetMarket},
	}
	return s
}

// HistoryOpts selects the synthesized price history embedded in a detail
// record. An empty Interval means daily points; a non-positive Limit means
// Options.DetailHistoryPoints.
type HistoryOpts struct {
	Interval string
	Limit    int
}

// detailInterval is the spacing of a detail record's history when the caller
// names none.
const detailInterval = "1d"

// series returns the point count and spacing for a synthesized detail
// history, using defPoints when no limit was given.
func (h HistoryOpts) series(defPoints int) (int, time.Duration) {
	interval := h.Interval
	if interval == "" {
		interval = detailInterval
	}
	step, _ := IntervalStep(interval)
	n := h.Limit
	if n <= 0 {
		n = defPoints
	}
	return n, step
}

// GetMarket builds the detail record for id. It only fails when every
// upstream source is unusable; callers are expected to serve FallbackRecord
// in that case.
func (s *MarketService) GetMarket(ctx context.Context, id string, hist HistoryOpts) (domain.MarketRecord, error) {
	base, err := s.resolveBase(ctx, id, true)
	if err != nil {
		return domain.MarketRecord{}, err
	}

	outcomes := s.discoverOutcomes(ctx, id, base.market)
	books := s.fetchBooks(ctx, outcomes)

	rec := buildRecord(id, base.market)
	rec.Outcomes = make([]domain.Outcome, len(outcomes))
	for i, o := range outcomes {
		oid := o.TokenID
		if oid == "" {
			oid = strconv.Itoa(i + 1)
		}
		rec.Outcomes[i] = domain.Outcome{
			ID:        oid,
			Label:     o.Label,
			Price:     priceOr(o.Price, synth.DefaultPrice),
			IsWinner:  o.Winner,
			Orderbook: books[i],
		}
	}
	rec.CurrentPrice = rec.Outcomes[0].Price
	rec.Probability = probability(rec.CurrentPrice)

	now := s.now()
	if len(base.market.History) > 0 {
		rec.PriceHistory = base.market.History
	} else {
		n, step := hist.series(s.opts.DetailHistoryPoints)
		rec.PriceHistory = synth.AnchoredHistory(id, n, step, now, rec.CurrentPrice)
	}

	rec.RecentTrades = s.recentTrades(ctx, rec, now)

	if books[0] != nil {
		rec.Orderbook = *books[0]
	} else {
		rec.Orderbook = synth.Orderbook(rec.CurrentPrice, s.opts.BookDepth)
	}

	s.logger.DebugContext(ctx, "resolved market",
		slog.String("market_id", id),
		slog.String("source", base.source),
		slog.Int("outcomes", len(rec.Outcomes)),
	)

	return rec, nil
}

// Quote returns the current price of a market from the base source chain
// alone. When nothing upstream answers, the newest synthesized history point
// stands in and the quote is flagged synthetic.
func (s *MarketService) Quote(ctx context.Context, id string) domain.Quote {
	now := s.now()
	base, err := s.resolveBase(ctx, id, false)
	if err == nil && len(base.market.Outcomes) > 0 && base.market.Outcomes[0].Price != nil {
		return domain.Quote{
			MarketID:  id,
			Price:     *base.market.Outcomes[0].Price,
			Timestamp: now.UnixMilli(),
		}
	}
	pts := synth.PriceHistory(id, 1, time.Hour, now)
	return domain.Quote{
		MarketID:  id,
		Price:     pts[0].Price,
		Timestamp: pts[0].Timestamp,
		Synthetic: true,
	}
}

// discoverOutcomes returns the outcome list: the base record's, else the CLOB
// tokens for the condition, else a default Yes/No pair at 0.5.
func (s *MarketService) discoverOutcomes(ctx context.Context, id string, m domain.Market) []domain.OutcomeQuote {
	if len(m.Outcomes) > 0 {
		return m.Outcomes
	}

	conditionID := m.ConditionID
	if conditionID == "" {
		conditionID = id
	}
	clobMarket, err := s.clob.GetMarket(ctx, conditionID)
	if err == nil && len(clobMarket.Outcomes) > 0 {
		return clobMarket.Outcomes
	}
	if err != nil {
		s.logger.WarnContext(ctx, "token discovery failed, using default outcomes",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
	}

	half := synth.DefaultPrice
	return []domain.OutcomeQuote{
		{Label: "Yes", Price: &half},
		{Label: "No", Price: &half},
	}
}

// fetchBooks fetches one book per outcome concurrently. A failed or skipped
// fetch leaves a nil entry; it never fails the others.
func (s *MarketService) fetchBooks(ctx context.Context, outcomes []domain.OutcomeQuote) []*domain.Orderbook {
	books := make([]*domain.Orderbook, len(outcomes))

	var g errgroup.Group
	g.SetLimit(s.opts.BookConcurrency)
	for i, o := range outcomes {
		if o.TokenID == "" {
			continue
		}
		g.Go(func() error {
			book, err := s.clob.GetBook(ctx, o.TokenID)
			if err != nil {
				s.logger.WarnContext(ctx, "order book unavailable",
					slog.String("token_id", o.TokenID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			books[i] = &book
			return nil
		})
	}
	_ = g.Wait()

	return books
}

// recentTrades returns the upstream tape or two placeholder prints.
func (s *MarketService) recentTrades(ctx context.Context, rec domain.MarketRecord, now time.Time) []domain.Trade {
	trades, err := s.clob.GetTrades(ctx, rec.ID)
	if err == nil {
		return trades
	}
	s.logger.DebugContext(ctx, "trade tape unavailable, synthesizing",
		slog.String("market_id", rec.ID),
		slog.String("error", err.Error()),
	)
	return synth.Trades(rec.CurrentPrice, now)
}

// buildRecord maps the upstream market onto the record's display fields.
// Outcome-derived fields are filled by the caller.
func buildRecord(id string, m domain.Market) domain.MarketRecord {
	rec := domain.MarketRecord{
		ID:               firstNonEmpty(m.ConditionID, m.ID, id),
		Name:             firstNonEmpty(m.Question, m.EventTitle, "Unknown Market"),
		Description:      firstNonEmpty(m.Description, m.Question, "No description available"),
		Image:            firstNonEmpty(m.Image, m.EventImage),
		Icon:             firstNonEmpty(m.Icon, m.EventIcon),
		Slug:             m.Slug,
		EndDate:          m.EndDate,
		StartDate:        m.StartDate,
		ResolutionSource: m.ResolutionSource,
		Tags:             tagNames(m.Tags),
		Active:           m.Active == nil || *m.Active,
		Closed:           m.Closed != nil && *m.Closed,
		MinBetAmount:     m.MinOrderSize,
		MinTickSize:      m.MinTickSize,
		PriceChange24h:   m.PriceChange24h,
		Volume24h:        m.Volume24h,
		Liquidity:        m.Liquidity,
	}
	if rec.MinBetAmount == 0 {
		rec.MinBetAmount = 10
	}
	if rec.MinTickSize == 0 {
		rec.MinTickSize = 0.01
	}
	rec.Category = m.Category
	if rec.Category == "" && len(rec.Tags) > 0 {
		rec.Category = rec.Tags[0]
	}
	if rec.Category == "" {
		rec.Category = categoryOther
	}
	return rec
}

func priceOr(p *float64, def float64) float64 {
	if p == nil || math.IsNaN(*p) || *p < 0 || *p > 1 {
		return def
	}
	return *p
}

func probability(price float64) int {
	return int(math.Round(price * 100))
}

func tagNames(tags []domain.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := t.Name(); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
