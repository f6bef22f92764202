package orbit

import "math"

// DefaultSampleCount is the trajectory resolution used when a caller has no
// specific requirement. Callers needing a tighter closest-approach bound
// should raise the sample count rather than expect sub-sample refinement.
const DefaultSampleCount = 100

// Trajectory is one full simplified revolution: an ordered, immutable
// sequence of positions covering a 0..2π sweep. The sequence is open: the
// last point does not coincide with the first. Regenerate rather than mutate
// when the source elements change.
type Trajectory []Position

// GenerateOrbitPath synthesizes a circular orbit trajectory for a body at the
// given elements. Latitude and altitude are held fixed across the sweep;
// longitude advances linearly with the swept angle, approximating the
// eastward motion of a prograde pass. Produces exactly samples points and is
// fully deterministic.
//
// samples <= 1 yields a degenerate (empty or single-point) trajectory;
// closest-approach search rejects those explicitly.
func GenerateOrbitPath(latDeg, lonDeg, altKm float64, samples int) Trajectory {
	if samples <= 0 {
		return nil
	}

	path := make(Trajectory, 0, samples)
	for i := 0; i < samples; i++ {
		angle := float64(i) / float64(samples) * 2 * math.Pi
		adjustedLon := lonDeg + angle*radToDeg
		path = append(path, ToScenePosition(latDeg, adjustedLon, altKm, DefaultSceneEarthRadius))
	}
	return path
}

// CompanionOffset shapes a secondary body's trajectory relative to a primary:
// a fixed longitude lead, a latitude wobble (sin of three times the swept
// angle, scaled by the amplitude), and an altitude delta. The defaults are
// presentation choices, not physics; adjust freely per scenario.
type CompanionOffset struct {
	LonOffsetDeg       float64
	WobbleAmplitudeDeg float64
	AltOffsetKm        float64
}

// DefaultCompanionOffset returns the standard debris-tracking offsets:
// +5 degrees longitude, 2 degree wobble amplitude, 20 km below the primary.
func DefaultCompanionOffset() CompanionOffset {
	return CompanionOffset{
		LonOffsetDeg:       5.0,
		WobbleAmplitudeDeg: 2.0,
		AltOffsetKm:        -20.0,
	}
}

// GenerateCompanionPath synthesizes a trajectory for a secondary body (debris,
// a tracked threat) relative to a primary's elements. It shares the primary's
// angular parameterization, so positions at equal indices are directly
// comparable for closest-approach search.
func GenerateCompanionPath(latDeg, lonDeg, altKm float64, samples int, off CompanionOffset) Trajectory {
	if samples <= 0 {
		return nil
	}

	path := make(Trajectory, 0, samples)
	for i := 0; i < samples; i++ {
		angle := float64(i) / float64(samples) * 2 * math.Pi
		wobbleLat := latDeg + math.Sin(angle*3)*off.WobbleAmplitudeDeg
		adjustedLon := lonDeg + off.LonOffsetDeg + angle*radToDeg
		path = append(path, ToScenePosition(wobbleLat, adjustedLon, altKm+off.AltOffsetKm, DefaultSceneEarthRadius))
	}
	return path
}

// PositionAt returns the trajectory point for a progress fraction in [0,1].
// The core holds no clock: an external driver supplies monotonically
// increasing progress and derives the current position from the snapshot,
// never by mutating the source elements.
func PositionAt(t Trajectory, progress float64) Position {
	if len(t) == 0 {
		return Position{}
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}
	idx := int(math.Floor(progress * float64(len(t)-1)))
	return t[idx]
}
