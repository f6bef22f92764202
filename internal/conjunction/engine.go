package conjunction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/metrics"
	"github.com/orbitshield/orbitshield/internal/orbit"
)

// defaultSatelliteSizeM is assumed when sizing a satellite for collision
// probability; the catalog tracks sizes for debris only.
const defaultSatelliteSizeM = 5.0

// Config holds engine configuration loaded from environment variables.
type Config struct {
	ScanInterval       time.Duration // time between scans (default: 5s)
	MonitorThresholdKm float64       // pairs farther apart are skipped (default: 50)
	Lookahead          time.Duration // closest-approach search window (default: 1h)
	Workers            int           // concurrent satellite scans (default: NumCPU)
}

func (c Config) withDefaults() Config {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 5 * time.Second
	}
	if c.MonitorThresholdKm <= 0 {
		c.MonitorThresholdKm = 50
	}
	if c.Lookahead <= 0 {
		c.Lookahead = time.Hour
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// RiskSnapshot is one immutable scan result. Events are sorted by risk level,
// then score, highest first.
type RiskSnapshot struct {
	GeneratedAt    time.Time                `json:"generated_at"`
	Events         []catalog.CollisionEvent `json:"events"`
	PairsEvaluated int                      `json:"pairs_evaluated"`
	Satellites     int                      `json:"satellites"`
	Debris         int                      `json:"debris"`
}

// TopEvents returns up to n highest-ranked events from the snapshot.
func (s *RiskSnapshot) TopEvents(n int) []catalog.CollisionEvent {
	if n <= 0 || n > len(s.Events) {
		n = len(s.Events)
	}
	return s.Events[:n]
}

// Engine recomputes the risk picture on a fixed interval. Readers get the
// latest snapshot through an atomic pointer and never block a running scan.
type Engine struct {
	cfg    Config
	store  *catalog.Store
	logger *slog.Logger

	snapshot atomic.Pointer[RiskSnapshot]

	// alerted tracks pairs that already raised an alert, keyed by
	// satelliteID|debrisID, so a persisting threat alerts once per
	// escalation instead of once per scan.
	mu      sync.Mutex
	alerted map[string]Level
}

// NewEngine creates a risk engine over the given catalog.
func NewEngine(cfg Config, store *catalog.Store, logger *slog.Logger) *Engine {
	cfg = cfg.withDefaults()
	logger.Info("conjunction engine initialized",
		"scan_interval_seconds", cfg.ScanInterval.Seconds(),
		"monitor_threshold_km", cfg.MonitorThresholdKm,
		"lookahead_seconds", cfg.Lookahead.Seconds(),
		"workers", cfg.Workers,
	)
	return &Engine{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		alerted: make(map[string]Level),
	}
}

// Snapshot returns the latest scan result, or nil before the first scan.
func (e *Engine) Snapshot() *RiskSnapshot {
	return e.snapshot.Load()
}

// Start runs an immediate scan, then rescans on the configured interval.
// Blocks until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.ScanOnce(ctx)

	ticker := time.NewTicker(e.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("conjunction engine stopped")
			return
		case <-ticker.C:
			if snap := e.snapshot.Load(); snap != nil {
				metrics.SetSnapshotAge(time.Since(snap.GeneratedAt))
			}
			e.ScanOnce(ctx)
		}
	}
}

// ScanOnce evaluates every active-satellite/debris pair and publishes a new
// snapshot. Each satellite is scanned in its own goroutine, bounded by a
// semaphore.
func (e *Engine) ScanOnce(ctx context.Context) *RiskSnapshot {
	start := time.Now()

	sats := e.store.ListSatellites(catalog.ListOptions{Status: catalog.StatusActive, All: true})
	debris := e.store.ListDebris(catalog.ListOptions{All: true})

	results := make([][]catalog.CollisionEvent, len(sats))
	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup
	var pairs atomic.Int64

	for i, sat := range sats {
		wg.Add(1)
		go func(idx int, s catalog.Satellite) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			results[idx] = e.scanSatellite(s, debris, &pairs)
		}(i, sat)
	}
	wg.Wait()

	var events []catalog.CollisionEvent
	for _, r := range results {
		events = append(events, r...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].RiskLevel != events[j].RiskLevel {
			return events[i].RiskLevel > events[j].RiskLevel
		}
		return events[i].RiskScore > events[j].RiskScore
	})

	byLevel := make(map[int]int)
	for i := range events {
		byLevel[events[i].RiskLevel]++
		if events[i].RiskLevel >= int(LevelWarning) {
			events[i] = e.store.RecordCollisionEvent(events[i])
		}
	}

	alerts := e.raiseAlerts(events)

	snap := &RiskSnapshot{
		GeneratedAt:    start.UTC(),
		Events:         events,
		PairsEvaluated: int(pairs.Load()),
		Satellites:     len(sats),
		Debris:         len(debris),
	}
	e.snapshot.Store(snap)

	duration := time.Since(start)
	metrics.RecordScan(duration, snap.PairsEvaluated, byLevel)
	satCount, debCount, alertCount, _ := e.store.Counts()
	metrics.SetCatalogCounts(satCount, debCount, alertCount)

	e.logger.Debug("conjunction scan complete",
		"duration_ms", duration.Milliseconds(),
		"pairs", snap.PairsEvaluated,
		"events", len(events),
		"alerts", alerts,
	)
	return snap
}

// scanSatellite evaluates one satellite against every debris object.
func (e *Engine) scanSatellite(s catalog.Satellite, debris []catalog.Debris, pairs *atomic.Int64) []catalog.CollisionEvent {
	satState := SatelliteState(s)

	var events []catalog.CollisionEvent
	for _, d := range debris {
		pairs.Add(1)

		debState := DebrisState(d)
		if satState.Pos.DistanceTo(debState.Pos) > e.cfg.MonitorThresholdKm {
			continue
		}

		ev, ok := e.evaluatePair(s, d, satState, debState)
		if ok {
			events = append(events, ev)
		}
	}
	return events
}

// evaluatePair scores one close pair. The minimum separation comes from the
// geometric closest-approach search over both generated trajectories; the
// kinematic features come from the linear-motion state vectors.
func (e *Engine) evaluatePair(s catalog.Satellite, d catalog.Debris, satState, debState State) (catalog.CollisionEvent, bool) {
	primary := orbit.GenerateOrbitPath(s.Latitude, s.Longitude, s.AltitudeKm, orbit.DefaultSampleCount)
	companion := orbit.GenerateCompanionPath(s.Latitude, s.Longitude, s.AltitudeKm, orbit.DefaultSampleCount, orbit.CompanionOffset{
		LonOffsetDeg:       d.Longitude - s.Longitude,
		WobbleAmplitudeDeg: d.Latitude - s.Latitude,
		AltOffsetKm:        d.AltitudeKm - s.AltitudeKm,
	})

	approach, err := orbit.FindClosestApproach(primary, companion)
	if err != nil {
		return catalog.CollisionEvent{}, false
	}
	minDistanceKm := orbit.ToKilometers(approach.DistanceSceneUnits, orbit.DefaultSceneEarthRadius)

	feats := ComputeFeatures(satState, debState, e.cfg.Lookahead)
	level := Classify(feats.DistanceKm, feats.RelativeVelocityKmps, feats.ApproachAngleDeg)

	return catalog.CollisionEvent{
		SatelliteID:              s.ID,
		SatelliteName:            s.Name,
		DebrisID:                 d.ID,
		DebrisName:               d.Name,
		DistanceKm:               feats.DistanceKm,
		RelativeVelocityKmps:     feats.RelativeVelocityKmps,
		AltitudeDiffKm:           math.Abs(s.AltitudeKm - d.AltitudeKm),
		RiskScore:                Score(feats),
		RiskLevel:                int(level),
		RiskLabel:                level.Label(),
		TimeToClosestApproachSec: feats.TCASeconds,
		MinimumDistanceKm:        minDistanceKm,
		CollisionProbability:     CollisionProbability(feats.DistanceKm, feats.RelativeVelocityKmps, defaultSatelliteSizeM, d.SizeEstimateM),
		RecommendedAction:        level.RecommendedAction(),
		ProgressFraction:         approach.ProgressFraction,
		Midpoint:                 [3]float64{approach.Midpoint.X, approach.Midpoint.Y, approach.Midpoint.Z},
	}, true
}

// raiseAlerts creates catalog alerts for warning-and-above events. A pair
// alerts when first seen at that severity or when it escalates; a pair that
// drops below warning is forgotten so a later re-approach alerts again.
func (e *Engine) raiseAlerts(events []catalog.CollisionEvent) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]Level, len(events))
	raised := 0

	for _, ev := range events {
		level := Level(ev.RiskLevel)
		if level < LevelWarning {
			continue
		}
		key := ev.SatelliteID + "|" + ev.DebrisID
		seen[key] = level

		if prev, ok := e.alerted[key]; ok && prev >= level {
			continue
		}
		e.alerted[key] = level

		e.store.CreateAlert(catalog.Alert{
			Severity: level.Severity(),
			Message: fmt.Sprintf("%s: %s within %.1f km of %s (risk score %.2f)",
				level.Label(), ev.DebrisName, ev.DistanceKm, ev.SatelliteName, ev.RiskScore),
			SatelliteID: ev.SatelliteID,
			DebrisID:    ev.DebrisID,
		})
		raised++
	}

	for key := range e.alerted {
		if _, ok := seen[key]; !ok {
			delete(e.alerted, key)
		}
	}

	if raised > 0 {
		metrics.IncAlertsGenerated(raised)
	}
	return raised
}
