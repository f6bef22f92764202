package orbit

import "errors"

// ErrInsufficientSamples is returned when a trajectory is too short for a
// meaningful closest-approach search. Failing fast here beats silently
// reporting a minimum over zero or one candidate points.
var ErrInsufficientSamples = errors.New("orbit: closest-approach search needs at least 2 samples per trajectory")

// ClosestApproach describes the minimum-distance encounter between two
// equally parameterized trajectories.
type ClosestApproach struct {
	// DistanceSceneUnits is the minimum pairwise distance found, in the
	// scene units the trajectories were generated in.
	DistanceSceneUnits float64

	// Index is the smallest index achieving the minimum.
	Index int

	// ProgressFraction is Index divided by the primary trajectory length,
	// in [0,1). Feed it to PositionAt to place a marker at the encounter.
	ProgressFraction float64

	// Midpoint is the point halfway between the two bodies at the
	// encounter index. It lies on neither trajectory.
	Midpoint Position
}

// FindClosestApproach scans two trajectories pairwise at equal indices and
// returns the minimum-distance encounter. The scan covers min(len(a), len(b))
// indices in a single O(n) pass; ties resolve to the lowest index.
//
// Equal-index comparison is intentional: both trajectories share one angular
// parameterization, so index i on each represents the same sweep fraction.
// This is a simplification of true conjunction analysis; there is no
// continuous-time refinement near the minimum. Raise the sample count for a
// tighter bound.
func FindClosestApproach(a, b Trajectory) (ClosestApproach, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return ClosestApproach{}, ErrInsufficientSamples
	}

	minDist := a[0].DistanceTo(b[0])
	minIdx := 0
	for i := 1; i < n; i++ {
		if d := a[i].DistanceTo(b[i]); d < minDist {
			minDist = d
			minIdx = i
		}
	}

	return ClosestApproach{
		DistanceSceneUnits: minDist,
		Index:              minIdx,
		ProgressFraction:   float64(minIdx) / float64(len(a)),
		Midpoint:           a[minIdx].Lerp(b[minIdx], 0.5),
	}, nil
}
