package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alanyoungcy/polydash/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	defaultInterval = 5 * time.Second
)

// Quoter supplies the current price of a market. Quote must not fail; when
// nothing upstream answers it returns a synthetic quote.
type Quoter interface {
	Quote(ctx context.Context, id string) domain.Quote
}

// Config tunes the stream handler.
type Config struct {
	// Interval is the time between quote pushes.
	Interval time.Duration
	// AllowedOrigins restricts the WebSocket handshake. Empty allows all.
	AllowedOrigins []string
}

// envelope is the JSON frame pushed to clients.
type envelope struct {
	Type    string       `json:"type"`
	Conn    string       `json:"conn"`
	Payload domain.Quote `json:"payload"`
}

// Stream serves one live quote feed per WebSocket connection. Connections
// share no state; each polls the Quoter on its own ticker until the client
// goes away or the server shuts down.
type Stream struct {
	quotes   Quoter
	interval time.Duration
	upgrader websocket.Upgrader
	active   atomic.Int64
	logger   *slog.Logger
}

// NewStream creates a Stream handler.
func NewStream(quotes Quoter, cfg Config, logger *slog.Logger) *Stream {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	origins := cfg.AllowedOrigins
	return &Stream{
		quotes:   quotes,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				for _, o := range origins {
					if o == "*" || strings.EqualFold(o, origin) {
						return true
					}
				}
				return false
			},
		},
		logger: logger.With(slog.String("component", "ws_stream")),
	}
}

// ActiveStreams returns the number of open connections.
func (s *Stream) ActiveStreams() int {
	return int(s.active.Load())
}

// HandleStream upgrades the request and pushes quotes for the market in the
// path until the connection closes.
// GET /ws/markets/{id}
func (s *Stream) HandleStream(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		http.Error(w, `{"error":"missing market id"}`, http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	connID := uuid.NewString()
	log := s.logger.With(slog.String("conn", connID), slog.String("market_id", id))

	s.active.Add(1)
	log.Info("ws: client connected", slog.Int64("active", s.active.Load()))
	defer func() {
		conn.Close()
		log.Info("ws: client disconnected", slog.Int64("active", s.active.Add(-1)))
	}()

	// The request context derives from the server's base context, so it ends
	// on shutdown; the read pump cancels it when the client goes away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel, log)

	s.writePump(ctx, conn, id, connID, log)
}

// readPump drains client frames so control messages are processed and
// cancels the stream once the connection fails.
func readPump(conn *websocket.Conn, cancel context.CancelFunc, log *slog.Logger) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("ws: unexpected close error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump sends a quote immediately, then one per interval, plus periodic
// pings for keepalive.
func (s *Stream) writePump(ctx context.Context, conn *websocket.Conn, id, connID string, log *slog.Logger) {
	quotes := time.NewTicker(s.interval)
	pings := time.NewTicker(pingPeriod)
	defer quotes.Stop()
	defer pings.Stop()

	push := func() bool {
		msg, err := json.Marshal(envelope{
			Type:    "quote",
			Conn:    connID,
			Payload: s.quotes.Quote(ctx, id),
		})
		if err != nil {
			log.Error("ws: encode quote failed", slog.String("error", err.Error()))
			return false
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, msg) == nil
	}

	if !push() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-quotes.C:
			if !push() {
				return
			}
		case <-pings.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
