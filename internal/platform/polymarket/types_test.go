package polymarket

import (
	"encoding/json"
	"testing"
)

func TestAPIMarketFlexibleDecoding(t *testing.T) {
	raw := `{
		"id": 12345,
		"conditionId": "0xcond",
		"question": "Will BTC close above 100k?",
		"tags": [{"slug":"crypto","label":"Crypto"}, "Bitcoin"],
		"active": "true",
		"closed": "false",
		"acceptingOrders": true,
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": ["0.62", "garbage"],
		"clobTokenIds": "[\"9001\",\"9002\"]",
		"volume24hr": "1234.5",
		"liquidity": -3,
		"oneDayPriceChange": 0.015,
		"orderMinSize": 15,
		"orderPriceMinTickSize": "0.001",
		"events": [{"title":"Parent","image":"p.png","icon":"p.ico","tags":[{"slug":"crypto","label":"Crypto"}]}]
	}`

	var m APIMarket
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	dm := m.ToDomainMarket()

	if dm.ID != "12345" || dm.ConditionID != "0xcond" {
		t.Errorf("ids = %q/%q", dm.ID, dm.ConditionID)
	}
	if len(dm.Tags) != 2 || dm.Tags[0].Name() != "Crypto" || dm.Tags[1].Name() != "Bitcoin" {
		t.Errorf("tags = %+v", dm.Tags)
	}
	if dm.Active == nil || !*dm.Active || dm.Closed == nil || *dm.Closed {
		t.Errorf("flags active=%v closed=%v", dm.Active, dm.Closed)
	}
	if len(dm.Outcomes) != 2 {
		t.Fatalf("outcomes = %+v", dm.Outcomes)
	}
	if dm.Outcomes[0].TokenID != "9001" || dm.Outcomes[0].Price == nil || *dm.Outcomes[0].Price != 0.62 {
		t.Errorf("outcome 0 = %+v", dm.Outcomes[0])
	}
	if dm.Outcomes[1].Price != nil {
		t.Errorf("unparsable price should be nil, got %v", *dm.Outcomes[1].Price)
	}
	if dm.Volume24h != 1234.5 {
		t.Errorf("volume = %v", dm.Volume24h)
	}
	if dm.Liquidity != 0 {
		t.Errorf("negative liquidity should coerce to 0, got %v", dm.Liquidity)
	}
	if dm.MinOrderSize != 15 || dm.MinTickSize != 0.001 {
		t.Errorf("min size/tick = %v/%v", dm.MinOrderSize, dm.MinTickSize)
	}
	if dm.EventTitle != "Parent" || dm.EventImage != "p.png" || dm.EventIcon != "p.ico" {
		t.Errorf("event ref = %q/%q/%q", dm.EventTitle, dm.EventImage, dm.EventIcon)
	}
}

func TestAPIMarketMissingFlagsStayNil(t *testing.T) {
	var m APIMarket
	if err := json.Unmarshal([]byte(`{"id":"1","active":null}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	dm := m.ToDomainMarket()
	if dm.Active != nil || dm.Closed != nil || dm.AcceptingOrders != nil {
		t.Errorf("absent flags should be nil: %v %v %v", dm.Active, dm.Closed, dm.AcceptingOrders)
	}
}

func TestAPIMarketLifetimeVolumeIsNotDailyVolume(t *testing.T) {
	var m APIMarket
	if err := json.Unmarshal([]byte(`{"id":"1","volume":"987654.3"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dm := m.ToDomainMarket(); dm.Volume24h != 0 {
		t.Errorf("volume24h = %v, want 0 when only lifetime volume is present", dm.Volume24h)
	}
}

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  float64
	}{
		{`0.5`, true, 0.5},
		{`"0.25"`, true, 0.25},
		{`" 1 "`, true, 1},
		{`null`, false, 0},
		{`"abc"`, false, 0},
		{`"NaN"`, false, 0},
		{`"Inf"`, false, 0},
		{`{}`, false, 0},
	}
	for _, tt := range tests {
		var f flexFloat
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if f.Valid != tt.valid || f.Value != tt.want {
			t.Errorf("%s: got %+v, want valid=%v value=%v", tt.in, f, tt.valid, tt.want)
		}
	}
}

func TestFlexStrings(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`["Yes","No"]`, []string{"Yes", "No"}},
		{`"[\"Up\",\"Down\"]"`, []string{"Up", "Down"}},
		{`[1, 2]`, []string{"1", "2"}},
		{`""`, nil},
		{`"not json"`, nil},
	}
	for _, tt := range tests {
		var f flexStrings
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if len(f) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.in, f, tt.want)
			continue
		}
		for i := range f {
			if f[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.in, f, tt.want)
			}
		}
	}
}

func TestFlexBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`"true"`, true},
		{`"TRUE"`, true},
		{`"false"`, false},
		{`1`, true},
		{`0`, false},
	}
	for _, tt := range tests {
		var b flexBool
		if err := json.Unmarshal([]byte(tt.in), &b); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if bool(b) != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, b, tt.want)
		}
	}
}
