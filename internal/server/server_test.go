package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/platform/polymarket"
	"github.com/alanyoungcy/polydash/internal/server/handler"
	"github.com/alanyoungcy/polydash/internal/service"
)

type outageMarkets struct{}

func (outageMarkets) GetMarket(context.Context, string, service.HistoryOpts) (domain.MarketRecord, error) {
	return domain.MarketRecord{}, domain.ErrUpstream
}

func (outageMarkets) ListMarkets(context.Context, domain.ListQuery) (domain.MarketList, error) {
	return domain.MarketList{}, errors.New("gamma down")
}

func (outageMarkets) PriceHistory(_ context.Context, id, interval string, limit int) domain.PriceHistory {
	return domain.PriceHistory{MarketID: id, Interval: interval, Data: make([]domain.PricePoint, limit)}
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string, int, time.Duration) (bool, error) { return false, nil }

func newTestHandler(cfg Config) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(cfg, Handlers{
		Health:  handler.NewHealthHandler(nil),
		Markets: handler.NewMarketHandler(outageMarkets{}, handler.MarketOptions{}, logger),
	}, logger)
}

func get(h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutesDegradeToPlaceholders(t *testing.T) {
	h := newTestHandler(Config{})

	t.Run("list", func(t *testing.T) {
		rr := get(h, "/api/markets", nil)
		var list domain.MarketList
		if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rr.Code != http.StatusOK || list.Total != 6 {
			t.Errorf("status = %d, total = %d", rr.Code, list.Total)
		}
	})

	t.Run("detail", func(t *testing.T) {
		rr := get(h, "/api/markets/abc", nil)
		var rec domain.MarketRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rr.Code != http.StatusOK || rec.ID != "abc" || rec.Error == "" {
			t.Errorf("status = %d, record = %+v", rr.Code, rec)
		}
	})

	t.Run("history", func(t *testing.T) {
		rr := get(h, "/api/markets/abc/history", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if got := rr.Header().Get("Cache-Control"); got != "public, max-age=300" {
			t.Errorf("Cache-Control = %q", got)
		}
	})

	t.Run("request id", func(t *testing.T) {
		rr := get(h, "/api/health", nil)
		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/markets", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestAuthProtectsAPIButNotHealth(t *testing.T) {
	h := newTestHandler(Config{APIKey: "k"})

	if rr := get(h, "/api/health", nil); rr.Code != http.StatusOK {
		t.Errorf("health status = %d", rr.Code)
	}
	if rr := get(h, "/api/markets", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("markets without key status = %d", rr.Code)
	}
	if rr := get(h, "/api/markets", map[string]string{"X-API-Key": "k"}); rr.Code != http.StatusOK {
		t.Errorf("markets with key status = %d", rr.Code)
	}
}

func TestRateLimitWired(t *testing.T) {
	h := newTestHandler(Config{RateLimiter: denyAll{}, RateLimitMax: 1, RateLimitWindow: time.Second})
	rr := get(h, "/api/markets", nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("rejected request should still carry a request id")
	}
}

func TestDetailAgainstDeadUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	markets := service.NewMarketService(
		polymarket.NewGammaClient(upstream.URL, time.Second),
		polymarket.NewClobClient(upstream.URL, time.Second),
		service.Options{},
		logger,
	)
	h := NewHandler(Config{}, Handlers{
		Health:  handler.NewHealthHandler(nil),
		Markets: handler.NewMarketHandler(markets, handler.MarketOptions{}, logger),
	}, logger)

	rr := get(h, "/api/markets/0xabc?interval=1h&limit=5", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var rec domain.MarketRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(rec.PriceHistory) != 5 {
		t.Fatalf("history len = %d, want 5", len(rec.PriceHistory))
	}
	if d := rec.PriceHistory[1].Timestamp - rec.PriceHistory[0].Timestamp; d != time.Hour.Milliseconds() {
		t.Errorf("spacing = %dms, want one hour", d)
	}
	if rec.Error != "upstream unavailable: gamma_index, gamma_metadata, clob failed" {
		t.Errorf("error = %q", rec.Error)
	}
	if strings.Contains(rec.Error, "page not found") {
		t.Error("upstream response body leaked into the payload")
	}
}
