package conjunction

import (
	"math"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/orbit"
)

// Maneuver deltas are kept in the safe small-burn band: 0.5 m/s to 50 m/s.
const (
	minDeltaVKmps = 0.0005
	maxDeltaVKmps = 0.05
)

// SuggestManeuver proposes an avoidance burn for a satellite under threat.
// The delta-v points mostly perpendicular to the relative velocity, in the
// plane of the encounter, with a small retrograde component along it; the
// magnitude scales with how close the predicted approach is.
func SuggestManeuver(sat, deb State, feats Features) catalog.ManeuverPlan {
	rRel := deb.Pos.Sub(sat.Pos)
	vRel := deb.Vel.Sub(sat.Vel)

	perp := cross(vRel, rRel)
	if perp.Norm() < 1e-6 {
		perp = cross(vRel, orbit.Position{Z: 1})
	}
	if perp.Norm() < 1e-6 {
		perp = cross(rRel, orbit.Position{Z: 1})
	}
	if perp.Norm() < 1e-6 {
		perp = orbit.Position{X: 1}
	}
	perpDir := unit(perp)

	// Severity rises as the predicted approach closes inside 50 km.
	severity := 1.0
	if feats.DistanceAtTCAKm > 1.0 {
		severity = math.Max(0, math.Min(1, (50.0-feats.DistanceAtTCAKm)/50.0))
	}
	dvMag := minDeltaVKmps + severity*(maxDeltaVKmps-minDeltaVKmps)

	var alongVRel orbit.Position
	if vRel.Norm() > 1e-6 {
		alongVRel = scale(unit(vRel), -1)
	}
	dv := orbit.Position{
		X: perpDir.X*dvMag*0.9 + alongVRel.X*dvMag*0.1,
		Y: perpDir.Y*dvMag*0.9 + alongVRel.Y*dvMag*0.1,
		Z: perpDir.Z*dvMag*0.9 + alongVRel.Z*dvMag*0.1,
	}
	mag := dv.Norm()

	// Rough miss-distance gain: dv (km/s) applied for the time until closest
	// approach drifts the trajectory by dv*t km. Assume an hour if the
	// approach is effectively now.
	horizon := math.Max(feats.TCASeconds, 1.0)
	if feats.TCASeconds <= 0 {
		horizon = 3600.0
	}
	expectedGainKm := mag * horizon

	confidence := math.Max(0.4, math.Min(0.98, 0.6+severity*0.35))

	plan := catalog.ManeuverPlan{
		ManeuverType:       "avoidance",
		DeltaV:             [3]float64{dv.X, dv.Y, dv.Z},
		DeltaVMagKmps:      mag,
		BurnDurationSec:    mag * 1000 / 10.0, // m/s at ~10 m/s^2 equivalent thrust
		ExpectedMissGainKm: expectedGainKm,
		Confidence:         confidence,
		Status:             catalog.ManeuverPending,
	}
	plan.SafetyNote = evaluateBurn(plan)
	return plan
}

// evaluateBurn grades a proposed burn by its expected gain per delta-v spent.
func evaluateBurn(p catalog.ManeuverPlan) string {
	if p.DeltaVMagKmps <= 0 {
		return "no burn required"
	}
	efficiency := p.ExpectedMissGainKm / (p.DeltaVMagKmps * 1000)
	switch {
	case efficiency > 0.05 && p.ExpectedMissGainKm > 0.5:
		return "execute: efficient miss-distance gain for the delta-v spent"
	case efficiency > 0.02:
		return "review: marginal gain, consider waiting for a refined solution"
	default:
		return "inefficient: burn buys little separation at this geometry"
	}
}

func cross(a, b orbit.Position) orbit.Position {
	return orbit.Position{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func unit(v orbit.Position) orbit.Position {
	n := v.Norm()
	if n == 0 {
		return orbit.Position{}
	}
	return scale(v, 1/n)
}

func scale(v orbit.Position, s float64) orbit.Position {
	return orbit.Position{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}
