package domain

// Market is the upstream view of a prediction market after the platform
// clients have decoded it. Optional upstream flags stay pointers so callers can
// tell "explicitly false" from "absent".
type Market struct {
	ID               string
	ConditionID      string
	Question         string
	Description      string
	Category         string
	Slug             string
	Image            string
	Icon             string
	ResolutionSource string
	EndDate          string
	StartDate        string
	Tags             []Tag

	Active          *bool
	Closed          *bool
	AcceptingOrders *bool

	Outcomes []OutcomeQuote

	Volume24h      float64
	Liquidity      float64
	PriceChange24h float64
	MinOrderSize   float64
	MinTickSize    float64

	// History holds price points embedded in the upstream record, if any.
	History []PricePoint

	// Parent event context, attached when the market came out of an event.
	EventTitle string
	EventImage string
	EventIcon  string
	EventTags  []Tag
}

// Tag is an upstream tag. Plain-string tags arrive with only Label set.
type Tag struct {
	Slug  string
	Label string
}

// Name returns the label, falling back to the slug.
func (t Tag) Name() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Slug
}

// OutcomeQuote is one tradable side of a market as seen upstream. Price is nil
// when upstream did not carry a usable value.
type OutcomeQuote struct {
	TokenID string
	Label   string
	Price   *float64
	Winner  bool
}

// Outcome is one side of a MarketRecord.
type Outcome struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Price     float64    `json:"price"`
	IsWinner  bool       `json:"isWinner"`
	Orderbook *Orderbook `json:"orderbook"`
}

// MarketRecord is the canonical detail shape served by GET /api/markets/{id}.
type MarketRecord struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	Image            string       `json:"image,omitempty"`
	Icon             string       `json:"icon,omitempty"`
	Slug             string       `json:"slug,omitempty"`
	EndDate          string       `json:"endDate,omitempty"`
	StartDate        string       `json:"startDate,omitempty"`
	ResolutionSource string       `json:"resolutionSource,omitempty"`
	Tags             []string     `json:"tags"`
	Active           bool         `json:"active"`
	Closed           bool         `json:"closed"`
	MinBetAmount     float64      `json:"minBetAmount"`
	MinTickSize      float64      `json:"minTickSize"`
	Outcomes         []Outcome    `json:"outcomes"`
	CurrentPrice     float64      `json:"currentPrice"`
	Probability      int          `json:"probability"`
	PriceChange24h   float64      `json:"priceChange24h"`
	Volume24h        float64      `json:"volume24h"`
	Liquidity        float64      `json:"liquidity"`
	PriceHistory     []PricePoint `json:"priceHistory"`
	RecentTrades     []Trade      `json:"recentTrades"`
	Orderbook        Orderbook    `json:"orderbook"`
	Error            string       `json:"error,omitempty"`
}

// MarketSummary is the lighter list shape served by GET /api/markets.
type MarketSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	CurrentPrice   float64  `json:"currentPrice"`
	PriceChange24h float64  `json:"priceChange24h"`
	Volume24h      float64  `json:"volume24h"`
	Liquidity      float64  `json:"liquidity"`
	EndDate        string   `json:"endDate"`
	Probability    int      `json:"probability"`
	IsWatched      bool     `json:"isWatched"`
	Active         bool     `json:"active"`
	Closed         bool     `json:"closed"`
	Outcomes       []string `json:"outcomes"`
	Slug           string   `json:"slug"`
	Tags           []string `json:"tags"`
	Image          string   `json:"image,omitempty"`
	Icon           string   `json:"icon,omitempty"`
}

// MarketList is the paged list payload.
type MarketList struct {
	Markets []MarketSummary `json:"markets"`
	Total   int             `json:"total"`
}

// ListQuery carries the list endpoint's filters.
type ListQuery struct {
	Limit  int
	Offset int
	Active bool
	Closed bool
	Tag    string
	Search string
}
