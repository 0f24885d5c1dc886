package service

import (
	"errors"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/alanyoungcy/polydash/internal/synth"
)

// sampleMarkets is the fixed list served when the events index is down.
var sampleMarkets = []domain.MarketSummary{
	{
		ID:             "0x9deb0baac40648821f96f01339229a422e2f5c877de55dc4dbf981f95a1e709c",
		Name:           "Avengers doomsday to cross $100M",
		Description:    "Will the Avengers Doomsday movie cross $100M at the box office in its opening weekend?",
		Category:       "Entertainment",
		CurrentPrice:   0.27,
		PriceChange24h: 0.069,
		Volume24h:      66231,
		Liquidity:      72742,
		EndDate:        "2025-10-10T00:00:00Z",
		Probability:    27,
		Slug:           "avengers-doomsday-100m",
		Tags:           []string{"Entertainment", "Movies"},
		Image:          "https://polymarket-upload.s3.us-east-2.amazonaws.com/avengers.png",
		Icon:           "🎬",
	},
	{
		ID:             "0x8deb0baac40648821f96f01339229a422e2f5c877de55dc4dbf981f95a1e709d",
		Name:           "Chat gpt 6 to release",
		Description:    "Will OpenAI release Chat GPT-6 before the end of 2025?",
		Category:       "Technology",
		CurrentPrice:   0.63,
		PriceChange24h: 0.05,
		Volume24h:      45123,
		Liquidity:      89542,
		EndDate:        "2025-12-31T23:59:59Z",
		Probability:    63,
		Slug:           "chatgpt-6-release",
		Tags:           []string{"Technology", "AI"},
		Icon:           "🤖",
	},
	{
		ID:             "0x7deb0baac40648821f96f01339229a422e2f5c877de55dc4dbf981f95a1e709e",
		Name:           "Bitcoin to Cross $100k End of 2026",
		Description:    "Will Bitcoin reach $100,000 USD by the end of 2026?",
		Category:       "Crypto",
		CurrentPrice:   0.68,
		PriceChange24h: 0.12,
		Volume24h:      234567,
		Liquidity:      456789,
		EndDate:        "2026-12-31T23:59:59Z",
		Probability:    68,
		Slug:           "bitcoin-100k-2026",
		Tags:           []string{"Crypto", "Bitcoin"},
		Icon:           "₿",
	},
	{
		ID:             "0x6deb0baac40648821f96f01339229a422e2f5c877de55dc4dbf981f95a1e709f",
		Name:           "Manchester City to win Premier League",
		Description:    "Will Manchester City win the 2024-2025 Premier League season?",
		Category:       "Sports",
		CurrentPrice:   0.45,
		PriceChange24h: -0.08,
		Volume24h:      78901,
		Liquidity:      134567,
		EndDate:        "2025-05-25T00:00:00Z",
		Probability:    45,
		Slug:           "manchester-city-premier-league",
		Tags:           []string{"Sports", "Football"},
		Icon:           "⚽",
	},
	{
		ID:             "0x5deb0baac40648821f96f01339229a422e2f5c877de55dc4dbf981f95a1e7090",
		Name:           "Russia to Stop War against Ukraine",
		Description:    "Will Russia officially end military operations in Ukraine by the end of 2025?",
		Category:       "Politics",
		CurrentPrice:   0.32,
		PriceChange24h: 0.02,
		Volume24h:      156789,
		Liquidity:      289456,
		EndDate:        "2025-12-31T23:59:59Z",
		Probability:    32,
		Slug:           "russia-ukraine-war-end",
		Tags:           []string{"Politics", "World Events"},
		Icon:           "🌍",
	},
	{
		ID:             "0x4deb0baac40648821f96f01339229a422e2f5c877de55dc4dbf981f95a1e7091",
		Name:           "Cancer Vaccine to be Available for Public",
		Description:    "Will a cancer vaccine become publicly available for general use by the end of 2025?",
		Category:       "Health",
		CurrentPrice:   0.38,
		PriceChange24h: 0.04,
		Volume24h:      67890,
		Liquidity:      123456,
		EndDate:        "2025-12-31T23:59:59Z",
		Probability:    38,
		Slug:           "cancer-vaccine-public",
		Tags:           []string{"Health", "Medical"},
		Icon:           "🧬",
	},
}

// SampleMarkets returns the fixed fallback list. The slice is a fresh copy on
// every call.
func SampleMarkets() domain.MarketList {
	out := make([]domain.MarketSummary, len(sampleMarkets))
	for i, m := range sampleMarkets {
		m.Active = true
		m.Outcomes = []string{"Yes", "No"}
		m.Tags = append([]string(nil), m.Tags...)
		out[i] = m
	}
	return domain.MarketList{Markets: out, Total: len(out)}
}

const fallbackHistoryPoints = 30

// FallbackRecord is the detail record served when no upstream source could
// resolve id. It carries a short failure summary in Error so the client can
// tell it apart from a real market; other error text is never copied out.
func FallbackRecord(id string, err error, now time.Time, hist HistoryOpts) domain.MarketRecord {
	const price = 0.65
	n, step := hist.series(fallbackHistoryPoints)

	msg := domain.ErrUpstream.Error()
	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		msg = unavailable.Error()
	}

	return domain.MarketRecord{
		ID:           id,
		Name:         "Sample Prediction Market",
		Description:  "This is a sample market for demonstration purposes.",
		Category:     "Demo",
		EndDate:      "2025-12-31T23:59:59Z",
		Tags:         []string{"demo", "sample"},
		Active:       true,
		MinBetAmount: 10,
		MinTickSize:  0.01,
		Outcomes: []domain.Outcome{
			{ID: "1", Label: "Yes", Price: price},
			{ID: "2", Label: "No", Price: 0.35},
		},
		CurrentPrice: price,
		Probability:  probability(price),
		Volume24h:    50000,
		Liquidity:    250000,
		PriceHistory: synth.AnchoredHistory(id, n, step, now, price),
		RecentTrades: []domain.Trade{
			{Timestamp: now.UTC().Format(time.RFC3339), Price: 0.65, Size: 500, Side: domain.TradeSideBuy},
			{Timestamp: now.Add(-time.Minute).UTC().Format(time.RFC3339), Price: 0.64, Size: 300, Side: domain.TradeSideSell},
		},
		Orderbook: domain.Orderbook{
			Bids: []domain.PriceLevel{{Price: 0.64, Size: 1000}, {Price: 0.63, Size: 1500}, {Price: 0.62, Size: 2000}},
			Asks: []domain.PriceLevel{{Price: 0.66, Size: 800}, {Price: 0.67, Size: 1200}, {Price: 0.68, Size: 1800}},
		},
		Error: msg,
	}
}
