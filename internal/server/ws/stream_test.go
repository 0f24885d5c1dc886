package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/gorilla/websocket"
)

type fixedQuoter struct{ price float64 }

func (q fixedQuoter) Quote(_ context.Context, id string) domain.Quote {
	return domain.Quote{MarketID: id, Price: q.price, Timestamp: 1700000000000}
}

func newStreamServer(t *testing.T, cfg Config) (*Stream, *httptest.Server) {
	t.Helper()
	s := NewStream(fixedQuoter{price: 0.42}, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/markets/{id}", s.HandleStream)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestStreamPushesQuotes(t *testing.T) {
	s, srv := newStreamServer(t, Config{Interval: 20 * time.Millisecond})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/markets/0xabc"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readEnvelope(t, conn)
	if first.Type != "quote" || first.Conn == "" {
		t.Errorf("envelope = %+v", first)
	}
	if first.Payload.MarketID != "0xabc" || first.Payload.Price != 0.42 {
		t.Errorf("payload = %+v", first.Payload)
	}

	second := readEnvelope(t, conn)
	if second.Conn != first.Conn {
		t.Errorf("conn id changed: %q -> %q", first.Conn, second.Conn)
	}

	if got := s.ActiveStreams(); got != 1 {
		t.Errorf("ActiveStreams = %d, want 1", got)
	}
}

func TestStreamReleasesOnClose(t *testing.T) {
	s, srv := newStreamServer(t, Config{Interval: 20 * time.Millisecond})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/markets/m1"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	readEnvelope(t, conn)
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.ActiveStreams() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("ActiveStreams = %d after close", s.ActiveStreams())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamRejectsOrigin(t *testing.T) {
	_, srv := newStreamServer(t, Config{AllowedOrigins: []string{"https://dash.example"}})

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/markets/m1"), header)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}

type countingQuoter struct{ calls atomic.Int64 }

func (q *countingQuoter) Quote(_ context.Context, id string) domain.Quote {
	q.calls.Add(1)
	return domain.Quote{MarketID: id, Price: 0.5}
}

func TestStreamPollsPerConnection(t *testing.T) {
	quotes := &countingQuoter{}
	s := NewStream(quotes, Config{Interval: 20 * time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/markets/{id}", s.HandleStream)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var conns []*websocket.Conn
	for range 2 {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/markets/same"), nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}
	for _, conn := range conns {
		readEnvelope(t, conn)
		readEnvelope(t, conn)
	}

	// Two connections on the same market do not share a poller.
	if got := quotes.calls.Load(); got < 4 {
		t.Errorf("quote calls = %d, want at least 2 per connection", got)
	}
}
