package domain

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// Orderbook holds resting bid and ask levels for one outcome.
type Orderbook struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// PricePoint is one sample of a price series. Timestamp is Unix milliseconds.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// PriceHistory is the payload of the history endpoint.
type PriceHistory struct {
	MarketID string       `json:"marketId"`
	Interval string       `json:"interval"`
	Data     []PricePoint `json:"data"`
}

// TradeSide is the aggressor side of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Trade is one print on the tape.
type Trade struct {
	Timestamp string    `json:"timestamp"`
	Price     float64   `json:"price"`
	Size      float64   `json:"size"`
	Side      TradeSide `json:"side"`
}

// Quote is a point-in-time price pushed over the live stream.
type Quote struct {
	MarketID  string  `json:"marketId"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Synthetic bool    `json:"synthetic"`
}
