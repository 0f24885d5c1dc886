package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/platform/polymarket"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func errNotFound(what, id string) error {
	return fmt.Errorf("fake %s %s: %w", what, id, domain.ErrNotFound)
}

type fakeGamma struct {
	events    []polymarket.APIEvent
	eventsErr error
	lastQuery polymarket.EventQuery

	index    map[string]domain.Market
	metadata map[string]domain.Market

	mu    sync.Mutex
	calls []string
}

func (f *fakeGamma) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGamma) GetEvents(_ context.Context, q polymarket.EventQuery) ([]polymarket.APIEvent, error) {
	f.record("events")
	f.lastQuery = q
	return f.events, f.eventsErr
}

func (f *fakeGamma) GetMarket(_ context.Context, id string) (domain.Market, error) {
	f.record("index:" + id)
	if m, ok := f.index[id]; ok {
		return m, nil
	}
	return domain.Market{}, errNotFound("index", id)
}

func (f *fakeGamma) GetMarketByConditionID(_ context.Context, id string) (domain.Market, error) {
	f.record("metadata:" + id)
	if m, ok := f.metadata[id]; ok {
		return m, nil
	}
	return domain.Market{}, errNotFound("metadata", id)
}

type fakeClob struct {
	markets    map[string]domain.Market
	books      map[string]domain.Orderbook
	trades     map[string][]domain.Trade
	history    []domain.PricePoint
	historyErr error

	mu        sync.Mutex
	calls     []string
	bookCalls []string
}

func (f *fakeClob) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClob) GetMarket(_ context.Context, id string) (domain.Market, error) {
	f.record("market:" + id)
	if m, ok := f.markets[id]; ok {
		return m, nil
	}
	return domain.Market{}, errNotFound("clob market", id)
}

func (f *fakeClob) GetBook(_ context.Context, tokenID string) (domain.Orderbook, error) {
	f.mu.Lock()
	f.bookCalls = append(f.bookCalls, tokenID)
	f.mu.Unlock()
	if b, ok := f.books[tokenID]; ok {
		return b, nil
	}
	return domain.Orderbook{}, errNotFound("book", tokenID)
}

func (f *fakeClob) GetTrades(_ context.Context, market string) ([]domain.Trade, error) {
	f.record("trades:" + market)
	if t, ok := f.trades[market]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("fake trades %s: %w", market, domain.ErrNoData)
}

func (f *fakeClob) GetPriceHistory(_ context.Context, market, interval string, limit int) ([]domain.PricePoint, error) {
	f.record(fmt.Sprintf("history:%s:%s:%d", market, interval, limit))
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func newTestService(g *fakeGamma, c *fakeClob) *MarketService {
	s := NewMarketService(g, c, Options{}, discardLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func ptr[T any](v T) *T { return &v }
