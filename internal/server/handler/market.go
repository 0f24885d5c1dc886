package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/service"
)

// MarketService defines the methods that the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	GetMarket(ctx context.Context, id string, hist service.HistoryOpts) (domain.MarketRecord, error)
	ListMarkets(ctx context.Context, q domain.ListQuery) (domain.MarketList, error)
	PriceHistory(ctx context.Context, id, interval string, limit int) domain.PriceHistory
}

// MarketOptions holds the paging defaults and caps for the market endpoints.
type MarketOptions struct {
	ListDefaultLimit    int
	ListMaxLimit        int
	HistoryDefaultLimit int
	HistoryMaxLimit     int
	DefaultInterval     string
}

// MarketHandler serves market-related HTTP endpoints. Every endpoint answers
// 200 with a well-formed payload; upstream failures degrade to placeholder
// data rather than an error status.
type MarketHandler struct {
	markets MarketService
	opts    MarketOptions
	logger  *slog.Logger
	now     func() time.Time
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, opts MarketOptions, logger *slog.Logger) *MarketHandler {
	if opts.ListDefaultLimit <= 0 {
		opts.ListDefaultLimit = 20
	}
	if opts.ListMaxLimit <= 0 {
		opts.ListMaxLimit = 100
	}
	if opts.HistoryDefaultLimit <= 0 {
		opts.HistoryDefaultLimit = 24
	}
	if opts.HistoryMaxLimit <= 0 {
		opts.HistoryMaxLimit = 1000
	}
	if opts.DefaultInterval == "" {
		opts.DefaultInterval = service.DefaultInterval
	}
	return &MarketHandler{
		markets: markets,
		opts:    opts,
		logger:  logHandler(logger, "market"),
		now:     time.Now,
	}
}

// ListMarkets returns open markets flattened out of the events index.
// GET /api/markets?limit=20&offset=0&active=true&closed=false&tag=&search=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r, h.opts.ListDefaultLimit, h.opts.ListMaxLimit)

	list, err := h.markets.ListMarkets(r.Context(), q)
	if err != nil {
		h.logger.WarnContext(r.Context(), "list markets failed, serving samples",
			slog.String("error", err.Error()),
		)
		list = service.SampleMarkets()
	}

	noStore(w)
	writeJSON(w, http.StatusOK, list)
}

// GetMarket returns the normalized detail record for a market. interval and
// limit shape the synthesized history; when absent the service uses daily
// points.
// GET /api/markets/{id}?interval=1d&limit=30
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	hist := service.HistoryOpts{
		Interval: strings.TrimSpace(r.URL.Query().Get("interval")),
		Limit:    min(intParam(r, "limit", 0), h.opts.HistoryMaxLimit),
	}

	rec, err := h.markets.GetMarket(r.Context(), id, hist)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get market failed, serving fallback record",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		rec = service.FallbackRecord(id, err, h.now(), hist)
	}

	noStore(w)
	writeJSON(w, http.StatusOK, rec)
}

// GetHistory returns a price series for a market.
// GET /api/markets/{id}/history?interval=1h&limit=24
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = h.opts.DefaultInterval
	}
	limit := intParam(r, "limit", h.opts.HistoryDefaultLimit)
	if limit == 0 {
		limit = h.opts.HistoryDefaultLimit
	}
	if limit > h.opts.HistoryMaxLimit {
		limit = h.opts.HistoryMaxLimit
	}

	history := h.markets.PriceHistory(r.Context(), id, interval, limit)

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, history)
}
