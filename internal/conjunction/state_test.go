package conjunction

import (
	"math"
	"testing"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/orbit"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSatelliteState_EquatorialFix(t *testing.T) {
	sat := catalog.Satellite{Latitude: 0, Longitude: 0, AltitudeKm: 550, VelocityKmps: 7.6}
	st := SatelliteState(sat)

	wantR := orbit.EarthRadiusKm + 550
	if !almostEqual(st.Pos.X, wantR, tol) || !almostEqual(st.Pos.Y, 0, tol) || !almostEqual(st.Pos.Z, 0, tol) {
		t.Errorf("position = %+v, want (%v, 0, 0)", st.Pos, wantR)
	}

	// Eastward tangent at the prime meridian points along +Z.
	if !almostEqual(st.Vel.X, 0, tol) || !almostEqual(st.Vel.Y, 0, tol) || !almostEqual(st.Vel.Z, 7.6, tol) {
		t.Errorf("velocity = %+v, want (0, 0, 7.6)", st.Vel)
	}

	// Tangential velocity is perpendicular to the radius at the equator.
	if dot := st.Pos.Dot(st.Vel); !almostEqual(dot, 0, 1e-6) {
		t.Errorf("pos . vel = %v, want 0", dot)
	}

	if !almostEqual(st.Vel.Norm(), 7.6, tol) {
		t.Errorf("speed = %v, want 7.6", st.Vel.Norm())
	}
}

func TestComputeFeatures_StaticPair(t *testing.T) {
	a := State{Pos: orbit.Position{X: 7000}, Vel: orbit.Position{Z: 7.5}}
	b := State{Pos: orbit.Position{X: 7010}, Vel: orbit.Position{Z: 7.5}}

	f := ComputeFeatures(a, b, time.Hour)

	if !almostEqual(f.DistanceKm, 10, tol) {
		t.Errorf("distance = %v, want 10", f.DistanceKm)
	}
	if !almostEqual(f.RelativeVelocityKmps, 0, tol) {
		t.Errorf("relative velocity = %v, want 0", f.RelativeVelocityKmps)
	}
	// No relative motion: closest approach is now, at the current distance.
	if f.TCASeconds != 0 {
		t.Errorf("tca = %v, want 0", f.TCASeconds)
	}
	if !almostEqual(f.DistanceAtTCAKm, 10, tol) {
		t.Errorf("distance at tca = %v, want 10", f.DistanceAtTCAKm)
	}
	if !almostEqual(f.ApproachAngleDeg, 0, tol) {
		t.Errorf("angle = %v, want 0", f.ApproachAngleDeg)
	}
	if !almostEqual(f.AltitudeDiffKm, 10, tol) {
		t.Errorf("altitude diff = %v, want 10", f.AltitudeDiffKm)
	}
}

func TestComputeFeatures_HeadOnApproach(t *testing.T) {
	// b closes on a along -Z at 15 km/s relative from 100 km out.
	a := State{Pos: orbit.Position{X: 7000}, Vel: orbit.Position{Z: 7.5}}
	b := State{Pos: orbit.Position{X: 7000, Z: 100}, Vel: orbit.Position{Z: -7.5}}

	f := ComputeFeatures(a, b, time.Hour)

	if !almostEqual(f.RelativeVelocityKmps, 15, tol) {
		t.Errorf("relative velocity = %v, want 15", f.RelativeVelocityKmps)
	}
	if !almostEqual(f.ApproachAngleDeg, 180, 1e-6) {
		t.Errorf("angle = %v, want 180", f.ApproachAngleDeg)
	}
	// Linear motion: closest approach after 100/15 seconds, at zero range.
	if !almostEqual(f.TCASeconds, 100.0/15.0, 1e-9) {
		t.Errorf("tca = %v, want %v", f.TCASeconds, 100.0/15.0)
	}
	if !almostEqual(f.DistanceAtTCAKm, 0, 1e-9) {
		t.Errorf("distance at tca = %v, want 0", f.DistanceAtTCAKm)
	}
}

func TestComputeFeatures_WindowClamp(t *testing.T) {
	a := State{Pos: orbit.Position{X: 7000}, Vel: orbit.Position{}}
	b := State{Pos: orbit.Position{X: 7000, Z: 100}, Vel: orbit.Position{Z: -0.001}}

	// Unclamped closest approach is 100000 s out; clamp to a 10 s window.
	f := ComputeFeatures(a, b, 10*time.Second)
	if f.TCASeconds != 10 {
		t.Errorf("tca = %v, want clamped to 10", f.TCASeconds)
	}
	if !almostEqual(f.DistanceAtTCAKm, 99.99, 1e-9) {
		t.Errorf("distance at tca = %v, want 99.99", f.DistanceAtTCAKm)
	}
}

func TestComputeFeatures_RecedingPair(t *testing.T) {
	// b moving away: the closest approach in the window is now.
	a := State{Pos: orbit.Position{X: 7000}, Vel: orbit.Position{}}
	b := State{Pos: orbit.Position{X: 7000, Z: 50}, Vel: orbit.Position{Z: 2}}

	f := ComputeFeatures(a, b, time.Hour)
	if f.TCASeconds != 0 {
		t.Errorf("tca = %v, want 0 for receding pair", f.TCASeconds)
	}
	if !almostEqual(f.DistanceAtTCAKm, 50, tol) {
		t.Errorf("distance at tca = %v, want 50", f.DistanceAtTCAKm)
	}
}

func TestAngleBetweenDeg_ZeroVector(t *testing.T) {
	if got := angleBetweenDeg(orbit.Position{}, orbit.Position{Z: 1}); got != 0 {
		t.Errorf("angle with zero vector = %v, want 0", got)
	}
}
