package service

import (
	"errors"
	"testing"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
)

func TestSampleMarkets(t *testing.T) {
	list := SampleMarkets()
	if list.Total != 6 || len(list.Markets) != 6 {
		t.Fatalf("total = %d, len = %d, want 6", list.Total, len(list.Markets))
	}
	for _, m := range list.Markets {
		if !m.Active || m.Closed || m.IsWatched {
			t.Errorf("%s flags = %v/%v/%v", m.ID, m.Active, m.Closed, m.IsWatched)
		}
		if len(m.Outcomes) != 2 || m.Outcomes[0] != "Yes" {
			t.Errorf("%s outcomes = %v", m.ID, m.Outcomes)
		}
		if m.Probability != int(m.CurrentPrice*100+0.5) {
			t.Errorf("%s probability %d does not match price %v", m.ID, m.Probability, m.CurrentPrice)
		}
	}

	list.Markets[0].Tags[0] = "mutated"
	if again := SampleMarkets(); again.Markets[0].Tags[0] == "mutated" {
		t.Error("SampleMarkets shares state between calls")
	}
}

func TestFallbackRecord(t *testing.T) {
	cause := &UnavailableError{
		Sources: []string{"gamma_index", "clob"},
		Causes:  []error{errors.New("HTTP 503: <html>raw upstream body</html>"), domain.ErrNotFound},
	}
	rec := FallbackRecord("abc", cause, fixedNow, HistoryOpts{})

	if rec.ID != "abc" || rec.Name != "Sample Prediction Market" || rec.Category != "Demo" {
		t.Errorf("identity = %q/%q/%q", rec.ID, rec.Name, rec.Category)
	}
	if rec.Error != "upstream unavailable: gamma_index, clob failed" {
		t.Errorf("error = %q", rec.Error)
	}
	if len(rec.Outcomes) != 2 || rec.Outcomes[0].Price != 0.65 || rec.Outcomes[1].Price != 0.35 {
		t.Errorf("outcomes = %+v", rec.Outcomes)
	}
	if rec.CurrentPrice != 0.65 || rec.Probability != 65 {
		t.Errorf("price = %v/%d", rec.CurrentPrice, rec.Probability)
	}
	if len(rec.PriceHistory) != 30 || rec.PriceHistory[29].Price != 0.65 {
		t.Errorf("history = %d points, last %+v", len(rec.PriceHistory), rec.PriceHistory[len(rec.PriceHistory)-1])
	}
	if len(rec.Orderbook.Bids) != 3 || len(rec.Orderbook.Asks) != 3 || len(rec.RecentTrades) != 2 {
		t.Errorf("book/trades = %+v / %+v", rec.Orderbook, rec.RecentTrades)
	}

	if nilErr := FallbackRecord("abc", nil, fixedNow, HistoryOpts{}); nilErr.Error != "upstream unavailable" {
		t.Errorf("fallback without a cause: error = %q", nilErr.Error)
	}
	other := FallbackRecord("abc", errors.New("dial tcp 10.0.0.3:443: connection refused"), fixedNow, HistoryOpts{})
	if other.Error != "upstream unavailable" {
		t.Errorf("unrelated error text leaked: %q", other.Error)
	}
}

func TestFallbackRecordHistoryGranularity(t *testing.T) {
	rec := FallbackRecord("abc", nil, fixedNow, HistoryOpts{Interval: "1h", Limit: 5})
	if len(rec.PriceHistory) != 5 {
		t.Fatalf("history len = %d, want 5", len(rec.PriceHistory))
	}
	if d := rec.PriceHistory[1].Timestamp - rec.PriceHistory[0].Timestamp; d != time.Hour.Milliseconds() {
		t.Errorf("spacing = %dms, want one hour", d)
	}
	if last := rec.PriceHistory[4]; last.Price != 0.65 || last.Timestamp != fixedNow.UnixMilli() {
		t.Errorf("last point = %+v", last)
	}
}
