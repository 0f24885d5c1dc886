package handler

import (
	"net/http"
	"time"
)

// StreamStats reports live stream usage for the health payload.
type StreamStats interface {
	ActiveStreams() int
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	streams   StreamStats
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler. streams may be nil.
func NewHealthHandler(streams StreamStats) *HealthHandler {
	return &HealthHandler{
		streams:   streams,
		startedAt: time.Now(),
	}
}

// HealthCheck responds with a simple JSON status indicating the server is alive.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}
	if h.streams != nil {
		body["active_streams"] = h.streams.ActiveStreams()
	}
	noStore(w)
	writeJSON(w, http.StatusOK, body)
}
