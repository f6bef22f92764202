// Package transform converts Earth-fixed Cartesian positions to geodetic
// coordinates. The propagation layer feeds SGP4 output (ECEF, kilometres)
// through here to refresh catalog records, which the geometry core then maps
// into scene space.
package transform

import "math"

// WGS-84 ellipsoid parameters, kilometres.
const (
	wgs84A  = 6378.137              // semi-major axis
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// GeodeticPoint holds a geodetic position: latitude/longitude in degrees,
// altitude in kilometres above the WGS-84 ellipsoid.
type GeodeticPoint struct {
	LatDeg, LonDeg, AltKm float64
}

// ECEFToGeodetic converts ECEF coordinates (kilometres) to geodetic
// coordinates using the iterative Bowring method. Converges in 2-3
// iterations for Earth orbits; five are run unconditionally.
func ECEFToGeodetic(x, y, z float64) GeodeticPoint {
	lon := math.Atan2(y, x)

	p := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, p*(1-wgs84E2))

	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(z+wgs84E2*n*sinLat, p)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		// Near the poles p/cosLat blows up; derive altitude from z instead.
		alt = math.Abs(z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return GeodeticPoint{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: lon * 180.0 / math.Pi,
		AltKm:  alt,
	}
}

// ValidOrbitalRadius reports whether an ECEF position (kilometres) has a
// magnitude plausible for an Earth-orbiting object: above the surface, below
// a generous high-orbit bound. NaN/Inf positions fail.
func ValidOrbitalRadius(x, y, z float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) {
		return false
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) || math.IsInf(z, 0) {
		return false
	}
	mag := math.Sqrt(x*x + y*y + z*z)
	return mag >= 6200.0 && mag <= 50000.0
}
