package transform

import (
	"math"
	"testing"
)

func TestECEFToGeodetic_KnownPoints(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		wantLat float64
		wantLon float64
		wantAlt float64
	}{
		{
			name: "equator prime meridian surface",
			x:    wgs84A, y: 0, z: 0,
			wantLat: 0, wantLon: 0, wantAlt: 0,
		},
		{
			name: "equator 90E at 400km",
			x:    0, y: wgs84A + 400, z: 0,
			wantLat: 0, wantLon: 90, wantAlt: 400,
		},
		{
			name: "north pole surface",
			x:    0, y: 0, z: 6356.7523142,
			wantLat: 90, wantLon: 0, wantAlt: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ECEFToGeodetic(tt.x, tt.y, tt.z)
			if math.Abs(got.LatDeg-tt.wantLat) > 1e-6 {
				t.Errorf("lat = %.8f, want %.8f", got.LatDeg, tt.wantLat)
			}
			if math.Abs(got.LonDeg-tt.wantLon) > 1e-6 {
				t.Errorf("lon = %.8f, want %.8f", got.LonDeg, tt.wantLon)
			}
			if math.Abs(got.AltKm-tt.wantAlt) > 1e-3 {
				t.Errorf("alt = %.6f km, want %.6f", got.AltKm, tt.wantAlt)
			}
		})
	}
}

func TestECEFToGeodetic_MidLatitude(t *testing.T) {
	// 45N should land close to 45 degrees with the ellipsoid correction in
	// play; verify the iteration converges to within a millidegree against a
	// forward-computed point.
	lat := 45.0 * math.Pi / 180.0
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
	altKm := 550.0

	x := (n + altKm) * cosLat
	y := 0.0
	z := (n*(1-wgs84E2) + altKm) * sinLat

	got := ECEFToGeodetic(x, y, z)
	if math.Abs(got.LatDeg-45.0) > 1e-3 {
		t.Errorf("lat = %.6f, want 45", got.LatDeg)
	}
	if math.Abs(got.AltKm-altKm) > 0.1 {
		t.Errorf("alt = %.4f km, want %.1f", got.AltKm, altKm)
	}
}

func TestValidOrbitalRadius(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		want    bool
	}{
		{"LEO", 6921, 0, 0, true},
		{"GEO", 42164, 0, 0, true},
		{"inside Earth", 1000, 0, 0, false},
		{"beyond bound", 60000, 0, 0, false},
		{"NaN", math.NaN(), 0, 0, false},
		{"Inf", math.Inf(1), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidOrbitalRadius(tt.x, tt.y, tt.z); got != tt.want {
				t.Errorf("ValidOrbitalRadius(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
			}
		})
	}
}
