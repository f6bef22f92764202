// Package orbit provides the orbital-geometry primitives shared by the
// conjunction engine, the API layer, and any renderer: mapping geodetic
// elements to scene-space positions, synthesizing simplified circular
// trajectories, and finding the closest approach between two trajectories.
//
// The model is deliberately simple: orbits are circles at constant altitude
// and latitude, parameterized linearly in swept angle. This is not SGP4 and
// does not model perturbations or true Keplerian motion. It is the uniform
// approximation the whole system is built on, so callers get bit-for-bit
// reproducible results for identical inputs.
//
// All functions are pure. Concurrent callers need no coordination.
package orbit

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used throughout (kilometres).
	EarthRadiusKm = 6371.0

	// DefaultSceneEarthRadius is the Earth radius in scene units. A scene
	// unit is therefore EarthRadiusKm/DefaultSceneEarthRadius kilometres.
	DefaultSceneEarthRadius = 2.0

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Position is a point in scene space. Passing earthRadiusScene equal to
// EarthRadiusKm to the transforms yields positions in kilometres instead
// (the scale factor collapses to 1).
type Position struct {
	X, Y, Z float64
}

// Sub returns p - other.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Dot returns the dot product of two position vectors.
func (p Position) Dot(other Position) float64 {
	return p.X*other.X + p.Y*other.Y + p.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (p Position) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// DistanceTo returns the straight-line distance between two points.
func (p Position) DistanceTo(other Position) float64 {
	return p.Sub(other).Norm()
}

// Lerp returns the linear interpolation between p and other at fraction t.
// t=0 yields p, t=1 yields other.
func (p Position) Lerp(other Position, t float64) Position {
	return Position{
		X: p.X + (other.X-p.X)*t,
		Y: p.Y + (other.Y-p.Y)*t,
		Z: p.Z + (other.Z-p.Z)*t,
	}
}

// ToScenePosition maps geodetic elements (degrees, degrees, kilometres) to a
// scene-space position where the Earth's radius equals earthRadiusScene.
//
// The magnitude of the result is (EarthRadiusKm + altKm) scaled by
// earthRadiusScene/EarthRadiusKm. Longitude wraps implicitly through the
// trigonometric terms; altitude is not range-checked, so any finite inputs
// produce a finite result. Callers own defaulting of missing values.
func ToScenePosition(latDeg, lonDeg, altKm, earthRadiusScene float64) Position {
	scale := earthRadiusScene / EarthRadiusKm
	r := (EarthRadiusKm + altKm) * scale

	latRad := latDeg * degToRad
	lonRad := lonDeg * degToRad

	return Position{
		X: r * math.Cos(latRad) * math.Cos(lonRad),
		Y: r * math.Sin(latRad),
		Z: r * math.Cos(latRad) * math.Sin(lonRad),
	}
}
