// Package conjunction runs the collision risk engine: a background scan of
// every satellite/debris pair that scores, classifies, and publishes the
// current risk picture as an immutable snapshot.
package conjunction

import (
	"math"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

// Level is a discrete risk classification, ordered from safe to critical.
type Level int

const (
	LevelSafe Level = iota
	LevelCaution
	LevelWarning
	LevelCritical
)

// Label returns the operator-facing name for the level.
func (l Level) Label() string {
	switch l {
	case LevelSafe:
		return "No Risk"
	case LevelCaution:
		return "Low Risk"
	case LevelWarning:
		return "Medium Risk"
	case LevelCritical:
		return "High Risk"
	}
	return "No Risk"
}

// Color returns the display color conventionally attached to the level.
func (l Level) Color() string {
	switch l {
	case LevelSafe:
		return "green"
	case LevelCaution:
		return "yellow"
	case LevelWarning:
		return "orange"
	case LevelCritical:
		return "red"
	}
	return "green"
}

// RecommendedAction returns the operational guidance for the level.
func (l Level) RecommendedAction() string {
	switch l {
	case LevelSafe:
		return "Continue monitoring"
	case LevelCaution:
		return "Increase monitoring frequency"
	case LevelWarning:
		return "Prepare avoidance maneuver"
	case LevelCritical:
		return "Execute immediate avoidance maneuver"
	}
	return "Continue monitoring"
}

// Severity maps the level onto alert severities.
func (l Level) Severity() string {
	switch l {
	case LevelWarning:
		return catalog.SeverityMedium
	case LevelCritical:
		return catalog.SeverityHigh
	}
	return catalog.SeverityLow
}

// ClassifyDistance buckets a separation distance into a risk level.
func ClassifyDistance(distanceKm float64) Level {
	switch {
	case distanceKm > 50:
		return LevelSafe
	case distanceKm > 20:
		return LevelCaution
	case distanceKm > 5:
		return LevelWarning
	default:
		return LevelCritical
	}
}

// Classify buckets by distance, then escalates one level for fast head-on
// geometry (relative speed above 10 km/s approaching at more than 150 deg).
func Classify(distanceKm, relVelocityKmps, approachAngleDeg float64) Level {
	level := ClassifyDistance(distanceKm)
	if relVelocityKmps > 10.0 && approachAngleDeg > 150 && level < LevelCritical {
		level++
	}
	return level
}

// Score maps the pair's geometry onto a deterministic risk probability in
// [0, 1]. Closer separation and a nearer, sooner closest approach raise the
// score; a large altitude split damps it.
func Score(f Features) float64 {
	// Exponential decay on current separation, 30 km characteristic scale.
	d := math.Max(f.DistanceKm, 0.001)
	base := math.Exp(-d / 30.0)

	// The predicted closest approach can dominate: 20 km scale, amplified
	// when the approach falls within the next 72 hours.
	baseTCA := math.Exp(-math.Max(f.DistanceAtTCAKm, 0.001)/20.0) * 0.8
	timeFactor := 1.0
	if f.TCASeconds >= 0 {
		const horizonSec = 72 * 3600.0
		timeFactor = 1.0 + math.Max(0, (horizonSec-f.TCASeconds)/horizonSec)*0.5
	}
	if amplified := baseTCA * timeFactor; amplified > base {
		base = amplified
	}

	velFactor := math.Min(f.RelativeVelocityKmps/12.0, 1.0) * 0.4
	angleContrib := f.ApproachAngleDeg / 180.0 * 0.2
	altFactor := math.Max(0, 1.0-math.Min(f.AltitudeDiffKm/50.0, 1.0)) * 0.3

	prob := base*0.7 + velFactor + angleContrib + altFactor*0.5
	return math.Max(0, math.Min(1, prob))
}

// CollisionProbability is a simplified impact probability from separation,
// closing speed, and combined object size. Capped at 0.99.
func CollisionProbability(distanceKm, relVelocityKmps, satSizeM, debrisSizeM float64) float64 {
	combinedRadiusKm := (satSizeM + debrisSizeM) / 2000.0
	if distanceKm <= combinedRadiusKm {
		return 0.99
	}

	velocityFactor := math.Min(relVelocityKmps/15.0, 1.0)

	const decayRate = 0.5
	probability := math.Exp(-decayRate*(distanceKm-combinedRadiusKm)) * velocityFactor
	return math.Min(math.Max(probability, 0), 0.99)
}
