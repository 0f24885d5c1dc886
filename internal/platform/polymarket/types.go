package polymarket

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
)

// flexBool unmarshals from JSON bool, string ("true"/"false"), or number so
// Gamma API responses work whether "active" is sent as bool or string. Other
// shapes decode as false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n float64
		if err := json.Unmarshal(data, &n); err == nil {
			*f = flexBool(n != 0)
		}
		return nil
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. Valid is false
// when the field was absent, null, or not a finite number.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			// Unexpected shapes are treated as missing rather than failing
			// the whole payload.
			*f = flexFloat{}
			return nil
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = flexFloat{}
			return nil
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*f = flexFloat{}
		return nil
	}
	*f = flexFloat{Value: v, Valid: true}
	return nil
}

func (f flexFloat) or(def float64) float64 {
	if f.Valid {
		return f.Value
	}
	return def
}

// flexString accepts a JSON string or number (Gamma sends numeric IDs in
// some responses).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// flexStrings decodes either a JSON array of strings/numbers or a string that
// itself holds a JSON-encoded array, e.g. "[\"Yes\",\"No\"]".
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var raw []flexString
	if err := json.Unmarshal(data, &raw); err == nil {
		*f = toStrings(raw)
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil || strings.TrimSpace(encoded) == "" {
		*f = nil
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		*f = nil
		return nil
	}
	*f = toStrings(raw)
	return nil
}

func toStrings(in []flexString) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

// --------------------------------------------------------------------------
// Gamma + CLOB market DTO
// --------------------------------------------------------------------------

// APITag is a tag as returned by Gamma (object) or CLOB (plain string).
type APITag struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

func (t *APITag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = APITag{Label: s}
		return nil
	}
	type plain APITag
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*t = APITag{}
		return nil
	}
	*t = APITag(p)
	return nil
}

// Token represents an outcome token entry in a CLOB market response.
type Token struct {
	TokenID flexString `json:"token_id"`
	Outcome string     `json:"outcome"`
	Price   flexFloat  `json:"price"`
	Winner  bool       `json:"winner"`
}

// APIPricePoint is one history sample. Gamma/CLOB variants use t/p,
// timestamp/price, or time/value.
type APIPricePoint struct {
	T         flexFloat `json:"t"`
	P         flexFloat `json:"p"`
	Timestamp any       `json:"timestamp"`
	Time      any       `json:"time"`
	Price     flexFloat `json:"price"`
	Value     flexFloat `json:"value"`
}

// APIEventRef is the parent-event stub Gamma embeds in market responses.
type APIEventRef struct {
	Title string   `json:"title"`
	Image string   `json:"image"`
	Icon  string   `json:"icon"`
	Tags  []APITag `json:"tags"`
}

// APIMarket decodes a market from any of the upstream services. Gamma uses
// camelCase keys and JSON-encoded string arrays; CLOB uses snake_case keys
// and a tokens array. Both shapes land in the same struct.
type APIMarket struct {
	ID                 flexString `json:"id"`
	ConditionID        string     `json:"conditionId"`
	ConditionIDSnake   string     `json:"condition_id"`
	Question           string     `json:"question"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Slug               string     `json:"slug"`
	MarketSlug         string     `json:"market_slug"`
	Image              string     `json:"image"`
	Icon               string     `json:"icon"`
	ResolutionSource   string     `json:"resolutionSource"`
	EndDate            string     `json:"endDate"`
	EndDateISO         string     `json:"end_date_iso"`
	StartDate          string     `json:"startDate"`
	GameStartTime      string     `json:"game_start_time"`
	Tags               []APITag   `json:"tags"`
	Active             *flexBool  `json:"active"`
	Closed             *flexBool  `json:"closed"`
	AcceptingOrders    *flexBool  `json:"acceptingOrders"`
	AcceptingClob      *flexBool  `json:"accepting_orders"`

	Outcomes      flexStrings `json:"outcomes"`
	OutcomePrices flexStrings `json:"outcomePrices"`
	ClobTokenIDs  flexStrings `json:"clobTokenIds"`
	Tokens        []Token     `json:"tokens"`

	Volume24hr        flexFloat `json:"volume24hr"`
	Liquidity         flexFloat `json:"liquidity"`
	LiquidityNum      flexFloat `json:"liquidityNum"`
	OneDayPriceChange flexFloat `json:"oneDayPriceChange"`
	OrderMinSize      flexFloat `json:"orderMinSize"`
	MinimumOrderSize  flexFloat `json:"minimum_order_size"`
	OrderTickSize     flexFloat `json:"orderPriceMinTickSize"`
	MinimumTickSize   flexFloat `json:"minimum_tick_size"`

	PriceHistory []APIPricePoint `json:"priceHistory"`
	Events       []APIEventRef   `json:"events"`
}

// APIEvent represents an event as returned by the Polymarket Gamma API.
// An event groups one or more related markets.
type APIEvent struct {
	ID      flexString  `json:"id"`
	Title   string      `json:"title"`
	Slug    string      `json:"slug"`
	Image   string      `json:"image"`
	Icon    string      `json:"icon"`
	Tags    []APITag    `json:"tags"`
	Markets []APIMarket `json:"markets"`
}

// ToDomainMarkets flattens the event into its markets, attaching the event's
// title, image, icon, and tags as fallback display metadata.
func (e *APIEvent) ToDomainMarkets() []domain.Market {
	out := make([]domain.Market, 0, len(e.Markets))
	for i := range e.Markets {
		m := e.Markets[i].ToDomainMarket()
		m.EventTitle = e.Title
		m.EventImage = e.Image
		m.EventIcon = e.Icon
		m.EventTags = toDomainTags(e.Tags)
		out = append(out, m)
	}
	return out
}

// ToDomainMarket converts an APIMarket to a domain.Market. Outcomes come from
// the CLOB tokens array when present, otherwise from Gamma's parallel
// outcomes/outcomePrices/clobTokenIds arrays.
func (m *APIMarket) ToDomainMarket() domain.Market {
	dm := domain.Market{
		ID:               string(m.ID),
		ConditionID:      firstNonEmpty(m.ConditionID, m.ConditionIDSnake),
		Question:         firstNonEmpty(m.Question, m.Title),
		Description:      m.Description,
		Category:         m.Category,
		Slug:             firstNonEmpty(m.Slug, m.MarketSlug),
		Image:            m.Image,
		Icon:             m.Icon,
		ResolutionSource: m.ResolutionSource,
		EndDate:          firstNonEmpty(m.EndDate, m.EndDateISO),
		StartDate:        firstNonEmpty(m.StartDate, m.GameStartTime),
		Tags:             toDomainTags(m.Tags),
		Active:           boolPtr(m.Active),
		Closed:           boolPtr(m.Closed),
		AcceptingOrders:  boolPtr(m.AcceptingOrders),
		Volume24h:        nonNegative(m.Volume24hr.or(0)),
		Liquidity:        nonNegative(m.Liquidity.or(m.LiquidityNum.or(0))),
		PriceChange24h:   m.OneDayPriceChange.or(0),
		MinOrderSize:     nonNegative(m.OrderMinSize.or(m.MinimumOrderSize.or(0))),
		MinTickSize:      nonNegative(m.OrderTickSize.or(m.MinimumTickSize.or(0))),
	}
	if dm.AcceptingOrders == nil {
		dm.AcceptingOrders = boolPtr(m.AcceptingClob)
	}

	if len(m.Tokens) > 0 {
		for _, tok := range m.Tokens {
			dm.Outcomes = append(dm.Outcomes, domain.OutcomeQuote{
				TokenID: string(tok.TokenID),
				Label:   tok.Outcome,
				Price:   fraction(tok.Price),
				Winner:  tok.Winner,
			})
		}
	} else {
		for i, label := range m.Outcomes {
			q := domain.OutcomeQuote{Label: label}
			if i < len(m.ClobTokenIDs) {
				q.TokenID = m.ClobTokenIDs[i]
			}
			if i < len(m.OutcomePrices) {
				if p, err := strconv.ParseFloat(m.OutcomePrices[i], 64); err == nil {
					q.Price = fraction(flexFloat{Value: p, Valid: !math.IsNaN(p) && !math.IsInf(p, 0)})
				}
			}
			dm.Outcomes = append(dm.Outcomes, q)
		}
	}

	for _, pt := range m.PriceHistory {
		if p, ok := pt.toDomain(); ok {
			dm.History = append(dm.History, p)
		}
	}

	if len(m.Events) > 0 {
		ev := m.Events[0]
		dm.EventTitle = ev.Title
		dm.EventImage = ev.Image
		dm.EventIcon = ev.Icon
		dm.EventTags = toDomainTags(ev.Tags)
	}

	return dm
}

// toDomain normalizes a history sample. Second-resolution timestamps are
// promoted to milliseconds.
func (p *APIPricePoint) toDomain() (domain.PricePoint, bool) {
	price := p.P
	if !price.Valid {
		price = p.Price
	}
	if !price.Valid {
		price = p.Value
	}
	fp := fraction(price)
	if fp == nil {
		return domain.PricePoint{}, false
	}

	var ts int64
	switch {
	case p.T.Valid:
		ts = int64(p.T.Value)
	default:
		var ok bool
		if ts, ok = parseTimestamp(p.Timestamp); !ok {
			if ts, ok = parseTimestamp(p.Time); !ok {
				return domain.PricePoint{}, false
			}
		}
	}
	if ts < 1e12 {
		ts *= 1000
	}
	return domain.PricePoint{Timestamp: ts, Price: *fp}, true
}

func parseTimestamp(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts.UnixMilli(), true
		}
	}
	return 0, false
}

// --------------------------------------------------------------------------
// CLOB book / trades DTOs
// --------------------------------------------------------------------------

// APIPriceLevel is a single bid/ask level as sent by the CLOB.
type APIPriceLevel struct {
	Price flexFloat `json:"price"`
	Size  flexFloat `json:"size"`
}

// APIBook is the CLOB /book response.
type APIBook struct {
	Market    string          `json:"market"`
	AssetID   string          `json:"asset_id"`
	Bids      []APIPriceLevel `json:"bids"`
	Asks      []APIPriceLevel `json:"asks"`
	Timestamp string          `json:"timestamp"`
}

// ToDomainOrderbook converts the book, dropping levels whose price is not a
// fraction in [0,1] or whose size is missing.
func (b *APIBook) ToDomainOrderbook() domain.Orderbook {
	ob := domain.Orderbook{
		Bids: make([]domain.PriceLevel, 0, len(b.Bids)),
		Asks: make([]domain.PriceLevel, 0, len(b.Asks)),
	}
	for _, lvl := range b.Bids {
		if pl, ok := lvl.toDomain(); ok {
			ob.Bids = append(ob.Bids, pl)
		}
	}
	for _, lvl := range b.Asks {
		if pl, ok := lvl.toDomain(); ok {
			ob.Asks = append(ob.Asks, pl)
		}
	}
	return ob
}

func (l APIPriceLevel) toDomain() (domain.PriceLevel, bool) {
	p := fraction(l.Price)
	if p == nil || !l.Size.Valid || l.Size.Value < 0 {
		return domain.PriceLevel{}, false
	}
	return domain.PriceLevel{Price: *p, Size: l.Size.Value}, true
}

// APITrade is one entry of the CLOB trade tape.
type APITrade struct {
	Price     flexFloat `json:"price"`
	Size      flexFloat `json:"size"`
	Side      string    `json:"side"`
	MatchTime any       `json:"match_time"`
	Timestamp any       `json:"timestamp"`
}

// ToDomainTrade converts a tape entry; ok is false for unusable prints.
func (t *APITrade) ToDomainTrade() (domain.Trade, bool) {
	p := fraction(t.Price)
	if p == nil || !t.Size.Valid {
		return domain.Trade{}, false
	}
	ts, ok := parseTimestamp(t.MatchTime)
	if !ok {
		if ts, ok = parseTimestamp(t.Timestamp); !ok {
			return domain.Trade{}, false
		}
	}
	if ts < 1e12 {
		ts *= 1000
	}
	side := domain.TradeSideBuy
	if strings.EqualFold(t.Side, "sell") {
		side = domain.TradeSideSell
	}
	return domain.Trade{
		Timestamp: time.UnixMilli(ts).UTC().Format(time.RFC3339),
		Price:     *p,
		Size:      t.Size.Value,
		Side:      side,
	}, true
}

// --------------------------------------------------------------------------
// Conversion helpers
// --------------------------------------------------------------------------

// fraction returns a pointer to the value when it is a finite number in
// [0,1]; anything else is treated as missing.
func fraction(f flexFloat) *float64 {
	if !f.Valid || f.Value < 0 || f.Value > 1 {
		return nil
	}
	v := f.Value
	return &v
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func boolPtr(b *flexBool) *bool {
	if b == nil {
		return nil
	}
	v := bool(*b)
	return &v
}

func toDomainTags(tags []APITag) []domain.Tag {
	out := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		if t.Slug == "" && t.Label == "" {
			continue
		}
		out = append(out, domain.Tag{Slug: t.Slug, Label: t.Label})
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
