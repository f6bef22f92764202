package conjunction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCatalog seeds one active satellite with one close and one distant
// debris object. The close pair sits 5 km apart radially, which classifies
// as critical.
func testCatalog(t *testing.T) (*catalog.Store, catalog.Satellite, catalog.Debris) {
	t.Helper()
	store := catalog.NewStore(100)

	sat, err := store.CreateSatellite(catalog.Satellite{
		Name: "obs-1", Latitude: 10, Longitude: 45, AltitudeKm: 550,
		InclinationDeg: 53, VelocityKmps: 7.6, Status: catalog.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateSatellite: %v", err)
	}

	near, err := store.CreateDebris(catalog.Debris{
		Name: "frag-near", ObjectType: catalog.ObjectDebris,
		Latitude: 10, Longitude: 45, AltitudeKm: 555,
		VelocityKmps: 7.5, SizeEstimateM: 1,
	})
	if err != nil {
		t.Fatalf("CreateDebris: %v", err)
	}

	if _, err := store.CreateDebris(catalog.Debris{
		Name: "frag-far", ObjectType: catalog.ObjectRocketBody,
		Latitude: -40, Longitude: -135, AltitudeKm: 800,
		VelocityKmps: 7.4, SizeEstimateM: 3,
	}); err != nil {
		t.Fatalf("CreateDebris: %v", err)
	}

	return store, sat, near
}

func TestScanOnce(t *testing.T) {
	store, sat, near := testCatalog(t)
	engine := NewEngine(Config{}, store, testLogger())

	snap := engine.ScanOnce(context.Background())
	if snap == nil {
		t.Fatal("ScanOnce returned nil snapshot")
	}
	if snap.PairsEvaluated != 2 {
		t.Errorf("pairs evaluated = %d, want 2", snap.PairsEvaluated)
	}
	if snap.Satellites != 1 || snap.Debris != 2 {
		t.Errorf("scanned %d satellites / %d debris, want 1 / 2", snap.Satellites, snap.Debris)
	}

	// Only the close pair is within the 50 km monitoring threshold.
	if len(snap.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(snap.Events))
	}
	ev := snap.Events[0]
	if ev.SatelliteID != sat.ID || ev.DebrisID != near.ID {
		t.Errorf("event pair = %s/%s, want %s/%s", ev.SatelliteID, ev.DebrisID, sat.ID, near.ID)
	}
	if ev.RiskLevel != int(LevelCritical) {
		t.Errorf("risk level = %d, want %d", ev.RiskLevel, LevelCritical)
	}
	if !almostEqual(ev.DistanceKm, 5, 1e-6) {
		t.Errorf("distance = %v km, want 5", ev.DistanceKm)
	}
	if ev.RiskScore <= 0 || ev.RiskScore > 1 {
		t.Errorf("risk score = %v outside (0, 1]", ev.RiskScore)
	}
	if ev.RecommendedAction != LevelCritical.RecommendedAction() {
		t.Errorf("action = %q", ev.RecommendedAction)
	}
	if ev.ProgressFraction < 0 || ev.ProgressFraction >= 1 {
		t.Errorf("progress fraction = %v outside [0, 1)", ev.ProgressFraction)
	}
	if ev.MinimumDistanceKm <= 0 {
		t.Errorf("minimum distance = %v, want positive", ev.MinimumDistanceKm)
	}

	// The snapshot is published for readers.
	if engine.Snapshot() != snap {
		t.Error("Snapshot() did not return the latest scan")
	}

	// Warning-and-above events are persisted to the event history.
	if events := store.ListCollisionEvents(catalog.ListOptions{All: true}); len(events) != 1 {
		t.Errorf("persisted events = %d, want 1", len(events))
	}
}

func TestScanOnce_AlertDeduplication(t *testing.T) {
	store, _, _ := testCatalog(t)
	engine := NewEngine(Config{}, store, testLogger())

	engine.ScanOnce(context.Background())
	alerts := store.ListAlerts(catalog.ListOptions{All: true})
	if len(alerts) != 1 {
		t.Fatalf("alerts after first scan = %d, want 1", len(alerts))
	}
	if alerts[0].Severity != catalog.SeverityHigh {
		t.Errorf("alert severity = %q, want %q", alerts[0].Severity, catalog.SeverityHigh)
	}

	// A persisting threat does not alert again on the next scan.
	engine.ScanOnce(context.Background())
	if alerts := store.ListAlerts(catalog.ListOptions{All: true}); len(alerts) != 1 {
		t.Errorf("alerts after second scan = %d, want still 1", len(alerts))
	}
}

func TestScanOnce_InactiveSatelliteSkipped(t *testing.T) {
	store, sat, _ := testCatalog(t)
	inactive := catalog.StatusInactive
	if _, err := store.UpdateSatellite(sat.ID, catalog.SatelliteUpdate{Status: &inactive}); err != nil {
		t.Fatalf("UpdateSatellite: %v", err)
	}

	engine := NewEngine(Config{}, store, testLogger())
	snap := engine.ScanOnce(context.Background())
	if snap.PairsEvaluated != 0 || len(snap.Events) != 0 {
		t.Errorf("inactive satellite scanned: %d pairs, %d events", snap.PairsEvaluated, len(snap.Events))
	}
}

func TestSnapshot_NilBeforeFirstScan(t *testing.T) {
	store := catalog.NewStore(10)
	engine := NewEngine(Config{}, store, testLogger())
	if engine.Snapshot() != nil {
		t.Error("Snapshot() before first scan should be nil")
	}
}

func TestSnapshot_TopEvents(t *testing.T) {
	snap := &RiskSnapshot{Events: []catalog.CollisionEvent{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	if got := snap.TopEvents(2); len(got) != 2 || got[0].ID != "a" {
		t.Errorf("TopEvents(2) = %v", got)
	}
	if got := snap.TopEvents(0); len(got) != 3 {
		t.Errorf("TopEvents(0) returned %d events, want all 3", len(got))
	}
	if got := snap.TopEvents(10); len(got) != 3 {
		t.Errorf("TopEvents(10) returned %d events, want all 3", len(got))
	}
}

func TestAnalyze(t *testing.T) {
	store, sat, near := testCatalog(t)
	engine := NewEngine(Config{}, store, testLogger())

	report, err := engine.Analyze(sat.ID, 2, false)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.Threats) != 2 {
		t.Fatalf("threats = %d, want 2", len(report.Threats))
	}
	// Ranked by current distance, nearest first.
	if report.Threats[0].Debris.ID != near.ID {
		t.Errorf("top threat = %s, want %s", report.Threats[0].Debris.ID, near.ID)
	}
	if report.Threats[0].DistanceKm >= report.Threats[1].DistanceKm {
		t.Errorf("threats unsorted: %v >= %v", report.Threats[0].DistanceKm, report.Threats[1].DistanceKm)
	}
	if report.Maneuver != nil {
		t.Error("maneuver attached without include_maneuver")
	}
}

func TestAnalyze_ManeuverPersisted(t *testing.T) {
	store, sat, _ := testCatalog(t)
	engine := NewEngine(Config{}, store, testLogger())

	report, err := engine.Analyze(sat.ID, 1, true)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Maneuver == nil {
		t.Fatal("no maneuver for a critical top threat")
	}
	if report.Maneuver.SatelliteID != sat.ID {
		t.Errorf("maneuver satellite = %s, want %s", report.Maneuver.SatelliteID, sat.ID)
	}
	if report.Maneuver.Status != catalog.ManeuverPending {
		t.Errorf("maneuver status = %q, want pending", report.Maneuver.Status)
	}

	plans := store.ListManeuvers(sat.ID, catalog.ListOptions{All: true})
	if len(plans) != 1 || plans[0].ID != report.Maneuver.ID {
		t.Errorf("persisted plans = %v", plans)
	}
}

func TestAnalyze_UnknownSatellite(t *testing.T) {
	store, _, _ := testCatalog(t)
	engine := NewEngine(Config{}, store, testLogger())

	if _, err := engine.Analyze("nope", 5, false); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Analyze(unknown) error = %v, want ErrNotFound", err)
	}
}
