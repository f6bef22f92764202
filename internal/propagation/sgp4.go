// Package propagation refreshes catalog geodetic fixes from TLE element sets.
// Satellites that carry TLE lines get a real SGP4-derived position; everything
// else keeps the position it was created with. This is the only place real
// orbital mechanics enters the system; the geometry core stays on its
// circular-orbit approximation by design.
package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/orbitshield/orbitshield/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite.
// Pure Go, battle-tested, ships its own GMST and ECI→ECEF helpers so no
// hand-rolled frame rotation is needed here.
//
// Note: the library calls log.Fatal on malformed TLE input, so lines are
// pre-validated before they ever reach it.

// SGP4Propagator wraps one satellite's parsed element set.
type SGP4Propagator struct {
	sat  satellite.Satellite
	name string
}

// NewSGP4Propagator parses TLE lines into a propagator. name is used only in
// error messages.
func NewSGP4Propagator(line1, line2, name string) (*SGP4Propagator, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for %s: %w", name, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for %s: code=%d %s", name, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, name: name}, nil
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got %q", line2[0])
	}
	return nil
}

// GeodeticAt propagates to t and returns the geodetic fix (degrees, degrees,
// kilometres). Propagation failures surface as NaN/Inf or implausible radii
// in the library output, both reported as errors.
func (p *SGP4Propagator) GeodeticAt(t time.Time) (transform.GeodeticPoint, error) {
	t = t.UTC()
	posECI, _ := satellite.Propagate(p.sat,
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(posECI.X) || math.IsNaN(posECI.Y) || math.IsNaN(posECI.Z) {
		return transform.GeodeticPoint{}, fmt.Errorf("sgp4 propagation failed for %s: output is NaN", p.name)
	}

	jd := satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	if !transform.ValidOrbitalRadius(posECEF.X, posECEF.Y, posECEF.Z) {
		mag := math.Sqrt(posECEF.X*posECEF.X + posECEF.Y*posECEF.Y + posECEF.Z*posECEF.Z)
		return transform.GeodeticPoint{}, fmt.Errorf("sgp4 propagation failed for %s: implausible radius %.1f km", p.name, mag)
	}

	return transform.ECEFToGeodetic(posECEF.X, posECEF.Y, posECEF.Z), nil
}
