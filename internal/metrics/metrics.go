// Package metrics centralizes Prometheus instrumentation for the service:
// HTTP traffic, conjunction scans, propagation refreshes, and SSE streams.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbitshield_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbitshield_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	scanDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orbitshield_conjunction_scan_duration_seconds",
			Help:    "Duration of one full satellite-debris conjunction scan.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	scanPairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbitshield_conjunction_pairs_evaluated_total",
			Help: "Total satellite-debris pairs evaluated across all scans.",
		},
	)

	snapshotEvents = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orbitshield_risk_events",
			Help: "Risk events in the latest snapshot, by risk level.",
		},
		[]string{"level"},
	)

	snapshotAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orbitshield_risk_snapshot_age_seconds",
			Help: "Age of the latest risk snapshot.",
		},
	)

	catalogObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orbitshield_catalog_objects",
			Help: "Objects in the catalog, by kind.",
		},
		[]string{"kind"},
	)

	alertsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbitshield_alerts_generated_total",
			Help: "Alerts generated from conjunction scans.",
		},
	)

	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orbitshield_propagation_refresh_duration_seconds",
			Help:    "Duration of one TLE propagation refresh pass.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	refreshOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbitshield_propagation_refresh_total",
			Help: "Satellite refresh outcomes per propagation pass.",
		},
		[]string{"outcome"},
	)

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbitshield_stream_connections_total",
			Help: "SSE stream connect/disconnect events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orbitshield_streams_active",
			Help: "Currently connected SSE streams.",
		},
	)

	streamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbitshield_stream_messages_total",
			Help: "SSE data messages sent.",
		},
	)

	streamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbitshield_stream_bytes_total",
			Help: "Bytes written to SSE streams.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbitshield_stream_errors_total",
			Help: "SSE stream errors, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		scanDurationSeconds,
		scanPairsTotal,
		snapshotEvents,
		snapshotAgeSeconds,
		catalogObjects,
		alertsGeneratedTotal,
		refreshDurationSeconds,
		refreshOutcomesTotal,
		streamConnectionsTotal,
		streamsActive,
		streamMessagesTotal,
		streamBytesTotal,
		streamErrorsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer so http.ResponseController can reach
// per-connection controls through the middleware chain.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// knownRoutes are fixed paths that keep their own metric label.
var knownRoutes = map[string]bool{
	"/healthz":                 true,
	"/readyz":                  true,
	"/metrics":                 true,
	"/api/v1/satellites":       true,
	"/api/v1/debris":           true,
	"/api/v1/collision-events": true,
	"/api/v1/alerts":           true,
	"/api/v1/maneuvers":        true,
	"/api/v1/maneuvers/plan":   true,
	"/api/v1/risks":            true,
	"/api/v1/stream/risks":     true,
}

// paramRoutes collapse per-record paths to a single label so metric
// cardinality stays bounded regardless of catalog size.
var paramRoutes = []struct {
	prefix string
	suffix string
	label  string
}{
	{"/api/v1/satellites/", "/position", "/api/v1/satellites/{id}/position"},
	{"/api/v1/satellites/", "/trajectory", "/api/v1/satellites/{id}/trajectory"},
	{"/api/v1/satellites/", "", "/api/v1/satellites/{id}"},
	{"/api/v1/debris/", "", "/api/v1/debris/{id}"},
	{"/api/v1/collision-events/", "", "/api/v1/collision-events/{id}"},
	{"/api/v1/alerts/", "/acknowledge", "/api/v1/alerts/{id}/acknowledge"},
	{"/api/v1/analysis/", "", "/api/v1/analysis/{satellite_id}"},
}

// normalizeRoute maps a request path to a bounded metric label. Paths that
// match no route (scanners, bots, typos) collapse to "other".
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	for _, pr := range paramRoutes {
		if !strings.HasPrefix(path, pr.prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, pr.prefix)
		if pr.suffix != "" {
			if id, ok := strings.CutSuffix(rest, pr.suffix); ok && id != "" && !strings.Contains(id, "/") {
				return pr.label
			}
			continue
		}
		if rest != "" && !strings.Contains(rest, "/") {
			return pr.label
		}
	}
	return "other"
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}

// RecordScan publishes the outcome of one conjunction scan.
func RecordScan(duration time.Duration, pairs int, eventsByLevel map[int]int) {
	scanDurationSeconds.Observe(duration.Seconds())
	scanPairsTotal.Add(float64(pairs))
	for level := 0; level <= 3; level++ {
		snapshotEvents.WithLabelValues(strconv.Itoa(level)).Set(float64(eventsByLevel[level]))
	}
}

// SetSnapshotAge publishes the age of the current risk snapshot.
func SetSnapshotAge(age time.Duration) {
	snapshotAgeSeconds.Set(age.Seconds())
}

// SetCatalogCounts publishes current catalog sizes.
func SetCatalogCounts(satellites, debris, alerts int) {
	catalogObjects.WithLabelValues("satellite").Set(float64(satellites))
	catalogObjects.WithLabelValues("debris").Set(float64(debris))
	catalogObjects.WithLabelValues("alert").Set(float64(alerts))
}

// IncAlertsGenerated counts alerts produced by a scan.
func IncAlertsGenerated(n int) {
	alertsGeneratedTotal.Add(float64(n))
}

// RecordPropagationRefresh publishes the outcome of one TLE refresh pass.
func RecordPropagationRefresh(duration time.Duration, refreshed, failed int) {
	refreshDurationSeconds.Observe(duration.Seconds())
	refreshOutcomesTotal.WithLabelValues("refreshed").Add(float64(refreshed))
	refreshOutcomesTotal.WithLabelValues("failed").Add(float64(failed))
}

// IncStreamConnections counts a stream connect or disconnect.
func IncStreamConnections(event string) {
	streamConnectionsTotal.WithLabelValues(event).Inc()
}

// IncStreamsActive increments the active stream gauge.
func IncStreamsActive() { streamsActive.Inc() }

// DecStreamsActive decrements the active stream gauge.
func DecStreamsActive() { streamsActive.Dec() }

// IncStreamMessages counts one SSE data message.
func IncStreamMessages() { streamMessagesTotal.Inc() }

// AddStreamBytes counts bytes written to a stream.
func AddStreamBytes(n int64) { streamBytesTotal.Add(float64(n)) }

// IncStreamErrors counts a stream error of the given kind.
func IncStreamErrors(kind string) { streamErrorsTotal.WithLabelValues(kind).Inc() }
