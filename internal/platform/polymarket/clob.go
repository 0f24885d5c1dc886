package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
)

// ClobClient is the read-only REST client for the Polymarket CLOB (Central
// Limit Order Book) API. It serves market token metadata, per-token order
// books, trade tapes, and price history.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewClobClient(baseURL string, timeout time.Duration) *ClobClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ClobClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetMarket returns the CLOB view of a market, including its outcome tokens.
func (c *ClobClient) GetMarket(ctx context.Context, conditionID string) (domain.Market, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(conditionID))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Market{}, fmt.Errorf("polymarket/clob: get market %s: %w", conditionID, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.Market{}, fmt.Errorf("polymarket/clob: decode market: %w", err)
	}

	return apiMarket.ToDomainMarket(), nil
}

// GetBook returns the resting bid/ask levels for one outcome token.
func (c *ClobClient) GetBook(ctx context.Context, tokenID string) (domain.Orderbook, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	body, err := c.doGet(ctx, "/book?"+params.Encode())
	if err != nil {
		return domain.Orderbook{}, fmt.Errorf("polymarket/clob: get book %s: %w", tokenID, err)
	}

	var book APIBook
	if err := json.Unmarshal(body, &book); err != nil {
		return domain.Orderbook{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}

	return book.ToDomainOrderbook(), nil
}

// GetTrades returns the recent trade tape for a market. The tape may be a
// bare array or wrapped in {"data": [...]}. An empty tape is reported as
// domain.ErrNoData.
func (c *ClobClient) GetTrades(ctx context.Context, market string) ([]domain.Trade, error) {
	params := url.Values{}
	params.Set("market", market)

	body, err := c.doGet(ctx, "/trades?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: get trades %s: %w", market, err)
	}

	var apiTrades []APITrade
	if err := json.Unmarshal(body, &apiTrades); err != nil {
		var wrapped struct {
			Data []APITrade `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("polymarket/clob: decode trades: %w", err)
		}
		apiTrades = wrapped.Data
	}

	trades := make([]domain.Trade, 0, len(apiTrades))
	for i := range apiTrades {
		if t, ok := apiTrades[i].ToDomainTrade(); ok {
			trades = append(trades, t)
		}
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("polymarket/clob: trades %s: %w", market, domain.ErrNoData)
	}

	return trades, nil
}

// GetPriceHistory returns a market's historical price series. The CLOB
// answers with {"history": [{"t":..,"p":..}]}; older deployments returned a
// bare array of {timestamp|time, price|value}. An empty series is reported as
// domain.ErrNoData.
func (c *ClobClient) GetPriceHistory(ctx context.Context, market, interval string, limit int) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doGet(ctx, "/prices-history?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: get price history %s: %w", market, err)
	}

	var raw []APIPricePoint
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapped struct {
			History []APIPricePoint `json:"history"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("polymarket/clob: decode price history: %w", err)
		}
		raw = wrapped.History
	}

	points := make([]domain.PricePoint, 0, len(raw))
	for i := range raw {
		if p, ok := raw[i].toDomain(); ok {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("polymarket/clob: price history %s: %w", market, domain.ErrNoData)
	}

	return points, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the CLOB API and returns the
// raw response body.
func (c *ClobClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := truncate(string(body), 256)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, statusCode, bodyStr)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
