// Package synth generates display-only placeholder market data for when the
// upstream services have nothing to offer. The generators are deterministic
// trigonometric formulas, not random sources: the same market ID and length
// always produce the same prices, which the UI relies on when it re-renders.
// Do not swap them for a real PRNG.
package synth

import (
	"math"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
)

const (
	// MinPrice and MaxPrice bound every synthesized price.
	MinPrice = 0.01
	MaxPrice = 0.99

	// DefaultPrice is used wherever no price is known at all.
	DefaultPrice = 0.5

	volatility = 0.05
	trendScale = 0.02
)

// Seed sums the character codes of the market ID.
func Seed(marketID string) int {
	seed := 0
	for _, r := range marketID {
		seed += int(r)
	}
	return seed
}

// PriceHistory returns n points ending at end and spaced step apart, oldest
// first. The starting price is derived from the seed and lands in [0.3, 0.8].
func PriceHistory(marketID string, n int, step time.Duration, end time.Time) []domain.PricePoint {
	if n <= 0 {
		return []domain.PricePoint{}
	}
	seed := Seed(marketID)
	start := 0.3 + (math.Sin(float64(seed))+1)/2*0.5
	prices := walk(seed, n, start)
	return stamp(prices, step, end)
}

// AnchoredHistory returns the same walk as PriceHistory shifted so that the
// newest point sits on anchor. Used for detail charts where the current price
// is already known.
func AnchoredHistory(marketID string, n int, step time.Duration, end time.Time, anchor float64) []domain.PricePoint {
	if n <= 0 {
		return []domain.PricePoint{}
	}
	anchor = Clamp(anchor)
	seed := Seed(marketID)
	raw := walk(seed, n, anchor)
	shift := anchor - raw[n-1]
	for i := range raw {
		raw[i] = round3(Clamp(raw[i] + shift))
	}
	return stamp(raw, step, end)
}

// walk produces n clamped, rounded prices. The perturbation for each point is
// a pure function of (seed, k) where k counts down from n-1 to 0.
func walk(seed, n int, start float64) []float64 {
	prices := make([]float64, 0, n)
	current := start
	for k := n - 1; k >= 0; k-- {
		trend := math.Sin(float64(seed+k)*0.1) * trendScale
		change := math.Sin(float64(seed*(k+1)))*volatility + trend
		current = Clamp(current + change)
		prices = append(prices, round3(current))
	}
	return prices
}

func stamp(prices []float64, step time.Duration, end time.Time) []domain.PricePoint {
	n := len(prices)
	endMs := end.UnixMilli()
	stepMs := step.Milliseconds()
	out := make([]domain.PricePoint, n)
	for i, p := range prices {
		out[i] = domain.PricePoint{
			Timestamp: endMs - int64(n-1-i)*stepMs,
			Price:     p,
		}
	}
	return out
}

// Trades returns two placeholder prints at price: a buy at now and a sell one
// minute earlier.
func Trades(price float64, now time.Time) []domain.Trade {
	p := round3(Clamp(price))
	return []domain.Trade{
		{Timestamp: now.UTC().Format(time.RFC3339), Price: p, Size: 500, Side: domain.TradeSideBuy},
		{Timestamp: now.Add(-time.Minute).UTC().Format(time.RFC3339), Price: p, Size: 300, Side: domain.TradeSideSell},
	}
}

// Orderbook returns a ladder of depth levels per side, one cent apart,
// straddling price. Sizes grow with distance from the touch.
func Orderbook(price float64, depth int) domain.Orderbook {
	mid := Clamp(price)
	ob := domain.Orderbook{
		Bids: make([]domain.PriceLevel, 0, depth),
		Asks: make([]domain.PriceLevel, 0, depth),
	}
	for i := 1; i <= depth; i++ {
		off := float64(i) * 0.01
		size := float64(500 + 500*i)
		if bid := round3(mid - off); bid >= MinPrice {
			ob.Bids = append(ob.Bids, domain.PriceLevel{Price: bid, Size: size})
		}
		if ask := round3(mid + off); ask <= MaxPrice {
			ob.Asks = append(ob.Asks, domain.PriceLevel{Price: ask, Size: size})
		}
	}
	return ob
}

// Clamp bounds p to [MinPrice, MaxPrice]. NaN maps to DefaultPrice.
func Clamp(p float64) float64 {
	if math.IsNaN(p) {
		return DefaultPrice
	}
	return math.Max(MinPrice, math.Min(MaxPrice, p))
}

func round3(p float64) float64 {
	return math.Round(p*1000) / 1000
}
