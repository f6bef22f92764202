package conjunction

import (
	"math"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/orbit"
)

// State is a km-space position and velocity pair for one tracked object.
// Positions come from the scene transform run at a 1:1 scale, so the frame
// matches the geometry core with the Y axis through the poles.
type State struct {
	Pos orbit.Position // km
	Vel orbit.Position // km/s
}

// Features holds the kinematic quantities risk scoring consumes, all derived
// from a pair of states under a linear-motion assumption.
type Features struct {
	DistanceKm           float64
	RelativeVelocityKmps float64
	ApproachAngleDeg     float64
	AltitudeDiffKm       float64
	TCASeconds           float64
	DistanceAtTCAKm      float64
}

// SatelliteState derives the km-space state vector for a satellite record.
func SatelliteState(s catalog.Satellite) State {
	return stateFor(s.Latitude, s.Longitude, s.AltitudeKm, s.VelocityKmps)
}

// DebrisState derives the km-space state vector for a debris record.
func DebrisState(d catalog.Debris) State {
	return stateFor(d.Latitude, d.Longitude, d.AltitudeKm, d.VelocityKmps)
}

// stateFor places the object at its geodetic fix and points its speed along
// the local eastward tangent. The catalog carries only a scalar speed, so the
// tangential direction is the best available approximation.
func stateFor(latDeg, lonDeg, altKm, speedKmps float64) State {
	pos := orbit.ToScenePosition(latDeg, lonDeg, altKm, orbit.EarthRadiusKm)
	lonRad := lonDeg * math.Pi / 180
	vel := orbit.Position{
		X: -speedKmps * math.Sin(lonRad),
		Y: 0,
		Z: speedKmps * math.Cos(lonRad),
	}
	return State{Pos: pos, Vel: vel}
}

// ComputeFeatures derives the risk inputs for a pair of states. The time of
// closest approach assumes straight-line motion and is clamped to
// [0, window]; near-parallel motion pins it to now.
func ComputeFeatures(a, b State, window time.Duration) Features {
	rRel := b.Pos.Sub(a.Pos)
	vRel := b.Vel.Sub(a.Vel)

	vRelSq := vRel.Dot(vRel)
	tca := 0.0
	if vRelSq >= 1e-12 {
		tca = -rRel.Dot(vRel) / vRelSq
	}
	if tca < 0 {
		tca = 0
	}
	if w := window.Seconds(); tca > w {
		tca = w
	}

	atTCA := orbit.Position{
		X: rRel.X + vRel.X*tca,
		Y: rRel.Y + vRel.Y*tca,
		Z: rRel.Z + vRel.Z*tca,
	}

	return Features{
		DistanceKm:           rRel.Norm(),
		RelativeVelocityKmps: vRel.Norm(),
		ApproachAngleDeg:     angleBetweenDeg(a.Vel, b.Vel),
		AltitudeDiffKm:       math.Abs(a.Pos.Norm() - b.Pos.Norm()),
		TCASeconds:           tca,
		DistanceAtTCAKm:      atTCA.Norm(),
	}
}

// angleBetweenDeg returns the angle between two vectors in [0, 180] degrees.
// A zero vector yields 0.
func angleBetweenDeg(a, b orbit.Position) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	cos := a.Dot(b) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
