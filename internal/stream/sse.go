// Package stream implements Server-Sent Events (SSE) streaming of the live
// collision risk picture. Clients connect via GET /api/v1/stream/risks and
// receive the top-ranked risk events from each new snapshot.
//
// SSE message format:
//
//	data: {"type":"risk_snapshot","t":"2026-08-30T12:00:00Z","events":[...]}\n\n
//
// First message is always metadata:
//
//	data: {"type":"metadata","scan_interval_seconds":5,"snapshot_age_seconds":2}\n\n
//
// Keep-alive comments (:\n\n) are sent every KeepaliveInterval to prevent
// timeout. Reconnecting clients receive a fresh metadata message on each
// connection.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/conjunction"
	"github.com/orbitshield/orbitshield/internal/httputil"
	"github.com/orbitshield/orbitshield/internal/metrics"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 10).
	KeepaliveInterval  time.Duration // Keep-alive ping interval (default: 30s).
	TrustProxy         bool          // Honor X-Forwarded-For (default: false).
}

// Handler manages SSE streaming connections.
type Handler struct {
	engine  *conjunction.Engine
	config  Config
	limiter *streamLimiter
	logger  *slog.Logger
}

// NewHandler creates a new streaming handler over the risk engine.
func NewHandler(engine *conjunction.Engine, config Config, logger *slog.Logger) *Handler {
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 10
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 30 * time.Second
	}
	return &Handler{
		engine:  engine,
		config:  config,
		limiter: newStreamLimiter(config.MaxConcurrentPerIP),
		logger:  logger,
	}
}

// HandleRisks serves the SSE risk stream.
// GET /api/v1/stream/risks?interval=5&top=10
func (h *Handler) HandleRisks(w http.ResponseWriter, r *http.Request) {
	interval := 5
	if v := r.URL.Query().Get("interval"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid interval parameter, must be 1-60"})
			return
		}
		interval = n
	}

	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid top parameter, must be 1-50"})
			return
		}
		top = n
	}

	// Rate limiting: enforce concurrent stream limit per IP.
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many concurrent streams"})
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"interval", interval,
		"top", top,
	)

	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	// Verify flusher support (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Clear the server's default WriteTimeout for this long-lived connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Jittered retry interval (3-7s) to prevent thundering-herd reconnection
	// storms when the server restarts.
	retryMs := 3000 + rand.Intn(4000)
	fmt.Fprintf(w, "retry: %d\n\n", retryMs)
	flusher.Flush()

	// Metadata message (first message on every connection).
	meta := metadataMessage{Type: "metadata", ScanInterval: interval}
	if snap := h.engine.Snapshot(); snap != nil {
		meta.SnapshotAge = int(time.Since(snap.GeneratedAt).Seconds())
	} else {
		meta.SnapshotAge = -1
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "remote_ip", ip, "error", err)
		return
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	keepaliveTicker := time.NewTicker(h.config.KeepaliveInterval)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	var lastSent time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			snap := h.engine.Snapshot()
			if snap == nil {
				metrics.IncStreamErrors("no_snapshot")
				h.logger.Debug("stream has no snapshot yet", "remote_ip", ip)
				continue
			}
			// Skip duplicates: only push when a newer scan has landed.
			if !snap.GeneratedAt.After(lastSent) {
				continue
			}

			if err := c.sendJSON(buildSnapshotMessage(snap, top)); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
				return
			}
			lastSent = snap.GeneratedAt

			// Reset keepalive since we just sent data.
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case <-keepaliveTicker.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

// buildSnapshotMessage formats a risk snapshot into the SSE payload with at
// most top events.
func buildSnapshotMessage(snap *conjunction.RiskSnapshot, top int) snapshotMessage {
	return snapshotMessage{
		Type:   "risk_snapshot",
		T:      snap.GeneratedAt.UTC().Format(time.RFC3339),
		Events: snap.TopEvents(top),
		Pairs:  snap.PairsEvaluated,
	}
}

// SSE message payload types.

type metadataMessage struct {
	Type         string `json:"type"`
	ScanInterval int    `json:"scan_interval_seconds"`
	SnapshotAge  int    `json:"snapshot_age_seconds"`
}

type snapshotMessage struct {
	Type   string                   `json:"type"`
	T      string                   `json:"t"`
	Events []catalog.CollisionEvent `json:"events"`
	Pairs  int                      `json:"pairs_evaluated"`
}
