package propagation

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/metrics"
)

// Config holds refresher configuration loaded from environment variables.
type Config struct {
	Workers  int           // parallel propagations (default: runtime.NumCPU())
	Interval time.Duration // refresh cadence (default: 30s)
}

// Refresher periodically recomputes geodetic fixes for catalog satellites
// carrying TLE lines. Satellites without TLE data are left untouched.
type Refresher struct {
	store  *catalog.Store
	config Config
	logger *slog.Logger

	mu    sync.Mutex
	props map[string]cachedPropagator // keyed by satellite ID
}

type cachedPropagator struct {
	prop         *SGP4Propagator
	line1, line2 string
}

// NewRefresher creates a refresher over the given catalog.
func NewRefresher(store *catalog.Store, config Config, logger *slog.Logger) *Refresher {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	return &Refresher{
		store:  store,
		config: config,
		logger: logger,
		props:  make(map[string]cachedPropagator),
	}
}

// Start runs the refresh loop until ctx is cancelled. An initial refresh
// happens immediately so propagated fixes are available before the first
// conjunction scan.
func (r *Refresher) Start(ctx context.Context) {
	r.RefreshOnce(ctx, time.Now())

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("propagation refresher stopped")
			return
		case t := <-ticker.C:
			r.RefreshOnce(ctx, t)
		}
	}
}

// RefreshOnce propagates every TLE-bearing satellite to target and writes the
// resulting fixes back to the catalog. Work is spread over a bounded worker
// pool; failed satellites are logged and skipped. Returns the number of
// satellites refreshed.
func (r *Refresher) RefreshOnce(ctx context.Context, target time.Time) int {
	sats := r.store.ListSatellites(catalog.ListOptions{All: true})

	type job struct {
		id   string
		name string
		prop *SGP4Propagator
	}

	var jobs []job
	for _, sat := range sats {
		if sat.TLELine1 == "" || sat.TLELine2 == "" {
			continue
		}
		prop, err := r.propagatorFor(sat)
		if err != nil {
			r.logger.Warn("skipping satellite with bad TLE", "id", sat.ID, "name", sat.Name, "error", err)
			continue
		}
		jobs = append(jobs, job{id: sat.ID, name: sat.Name, prop: prop})
	}
	if len(jobs) == 0 {
		return 0
	}

	start := time.Now()
	jobCh := make(chan job, r.config.Workers*2)

	var wg sync.WaitGroup
	var refreshed, failed int64
	var countMu sync.Mutex

	for i := 0; i < r.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				geo, err := j.prop.GeodeticAt(target)
				if err != nil {
					r.logger.Warn("propagation failed", "id", j.id, "name", j.name, "error", err)
					countMu.Lock()
					failed++
					countMu.Unlock()
					continue
				}
				if err := r.store.SetGeodeticFix(j.id, geo.LatDeg, geo.LonDeg, geo.AltKm); err != nil {
					// Satellite deleted mid-refresh; nothing to do.
					continue
				}
				countMu.Lock()
				refreshed++
				countMu.Unlock()
			}
		}()
	}

	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-ctx.Done():
			close(jobCh)
			wg.Wait()
			return int(refreshed)
		}
	}
	close(jobCh)
	wg.Wait()

	duration := time.Since(start)
	metrics.RecordPropagationRefresh(duration, int(refreshed), int(failed))
	r.logger.Debug("propagation refresh complete",
		"refreshed", refreshed,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
	return int(refreshed)
}

// propagatorFor returns a cached propagator for the satellite, rebuilding it
// if the TLE lines changed since the last refresh.
func (r *Refresher) propagatorFor(sat catalog.Satellite) (*SGP4Propagator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.props[sat.ID]; ok && c.line1 == sat.TLELine1 && c.line2 == sat.TLELine2 {
		return c.prop, nil
	}
	p, err := NewSGP4Propagator(sat.TLELine1, sat.TLELine2, sat.Name)
	if err != nil {
		return nil, err
	}
	r.props[sat.ID] = cachedPropagator{prop: p, line1: sat.TLELine1, line2: sat.TLELine2}
	return p, nil
}
