package propagation

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

// ISS TLE (epoch 2024). Real orbital elements used for testing.
const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestGeodeticAt_ISS(t *testing.T) {
	prop, err := NewSGP4Propagator(issLine1, issLine2, "ISS")
	if err != nil {
		t.Fatalf("NewSGP4Propagator: %v", err)
	}

	target := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	geo, err := prop.GeodeticAt(target)
	if err != nil {
		t.Fatalf("GeodeticAt: %v", err)
	}

	// ISS inclination bounds the latitude; altitude is ~400-430 km.
	if math.Abs(geo.LatDeg) > 52.0 {
		t.Errorf("latitude %.2f exceeds ISS inclination bound", geo.LatDeg)
	}
	if geo.LonDeg < -180 || geo.LonDeg > 180 {
		t.Errorf("longitude %.2f out of range", geo.LonDeg)
	}
	if geo.AltKm < 350 || geo.AltKm > 500 {
		t.Errorf("altitude %.1f km implausible for ISS", geo.AltKm)
	}

	// Deterministic: identical target yields identical fix.
	again, err := prop.GeodeticAt(target)
	if err != nil {
		t.Fatalf("GeodeticAt (repeat): %v", err)
	}
	if again != geo {
		t.Errorf("repeat propagation differs: %+v vs %+v", again, geo)
	}
}

func TestNewSGP4Propagator_InvalidTLE(t *testing.T) {
	tests := []struct {
		name         string
		line1, line2 string
	}{
		{"garbage", "not a tle", "also not a tle"},
		{"wrong prefixes", issLine2, issLine1},
		{"truncated", issLine1[:40], issLine2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSGP4Propagator(tt.line1, tt.line2, "BAD"); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRefreshOnce(t *testing.T) {
	store := catalog.NewStore(0)

	withTLE, err := store.CreateSatellite(catalog.Satellite{
		Name: "ISS", Latitude: 0, Longitude: 0, AltitudeKm: 420,
		InclinationDeg: 51.6, VelocityKmps: 7.66, Status: catalog.StatusActive,
		TLELine1: issLine1, TLELine2: issLine2,
	})
	if err != nil {
		t.Fatalf("seed ISS: %v", err)
	}
	static, err := store.CreateSatellite(catalog.Satellite{
		Name: "STATIC", Latitude: 10, Longitude: 45, AltitudeKm: 550,
		InclinationDeg: 53, VelocityKmps: 7.6, Status: catalog.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed static: %v", err)
	}

	r := NewRefresher(store, Config{Workers: 2}, testLogger())
	target := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	if n := r.RefreshOnce(context.Background(), target); n != 1 {
		t.Errorf("refreshed %d satellites, want 1", n)
	}

	got, _ := store.GetSatellite(withTLE.ID)
	if got.Latitude == 0 && got.Longitude == 0 && got.AltitudeKm == 420 {
		t.Error("TLE-bearing satellite fix was not updated")
	}

	untouched, _ := store.GetSatellite(static.ID)
	if untouched.Latitude != 10 || untouched.Longitude != 45 || untouched.AltitudeKm != 550 {
		t.Errorf("static satellite was modified: %+v", untouched)
	}
}

func TestRefreshOnce_BadTLESkipped(t *testing.T) {
	store := catalog.NewStore(0)
	_, err := store.CreateSatellite(catalog.Satellite{
		Name: "BROKEN", Latitude: 0, Longitude: 0, AltitudeKm: 500,
		InclinationDeg: 45, VelocityKmps: 7.5, Status: catalog.StatusActive,
		TLELine1: "1 garbage", TLELine2: "2 garbage",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewRefresher(store, Config{Workers: 1}, testLogger())
	if n := r.RefreshOnce(context.Background(), time.Now()); n != 0 {
		t.Errorf("refreshed %d, want 0", n)
	}
}
