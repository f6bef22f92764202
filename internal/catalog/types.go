// Package catalog holds the tracked-object catalog: satellites, debris, and
// the alert/event/maneuver records derived from them. Storage is in-memory
// and safe for concurrent use; records are returned by value so readers can
// never observe a concurrent mutation.
package catalog

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a record ID does not exist in the store.
var ErrNotFound = errors.New("catalog: record not found")

// Satellite operational states.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusDeorbited = "deorbited"
)

// Debris object types.
const (
	ObjectRocketBody = "rocket_body"
	ObjectPayload    = "payload"
	ObjectDebris     = "debris"
	ObjectUnknown    = "unknown"
)

// Satellite is a tracked spacecraft. Latitude/longitude/altitude are the
// current geodetic fix; the optional TLE lines let the propagation layer
// refresh that fix from real orbital elements.
type Satellite struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	NORADID        string    `json:"norad_id,omitempty" yaml:"norad_id"`
	Latitude       float64   `json:"latitude" yaml:"latitude"`
	Longitude      float64   `json:"longitude" yaml:"longitude"`
	AltitudeKm     float64   `json:"altitude_km" yaml:"altitude_km"`
	InclinationDeg float64   `json:"inclination_deg" yaml:"inclination_deg"`
	VelocityKmps   float64   `json:"velocity_kmps" yaml:"velocity_kmps"`
	Status         string    `json:"status" yaml:"status"`
	TLELine1       string    `json:"-" yaml:"tle_line1"`
	TLELine2       string    `json:"-" yaml:"tle_line2"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"-"`
}

// Validate checks the ranges the API accepts on create. Mirrors the write
// boundary of the REST layer; the geometry core itself never range-checks.
func (s Satellite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("catalog: satellite name is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("catalog: latitude %v out of range [-90, 90]", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("catalog: longitude %v out of range [-180, 180]", s.Longitude)
	}
	if s.AltitudeKm <= 0 || s.AltitudeKm >= 50000 {
		return fmt.Errorf("catalog: altitude %v km out of range (0, 50000)", s.AltitudeKm)
	}
	if s.InclinationDeg < 0 || s.InclinationDeg > 180 {
		return fmt.Errorf("catalog: inclination %v out of range [0, 180]", s.InclinationDeg)
	}
	if s.VelocityKmps <= 0 || s.VelocityKmps >= 20 {
		return fmt.Errorf("catalog: velocity %v km/s out of range (0, 20)", s.VelocityKmps)
	}
	switch s.Status {
	case StatusActive, StatusInactive, StatusDeorbited:
	default:
		return fmt.Errorf("catalog: unknown satellite status %q", s.Status)
	}
	return nil
}

// SatelliteUpdate carries a partial update; nil fields are left unchanged.
type SatelliteUpdate struct {
	Name           *string  `json:"name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	AltitudeKm     *float64 `json:"altitude_km"`
	InclinationDeg *float64 `json:"inclination_deg"`
	VelocityKmps   *float64 `json:"velocity_kmps"`
	Status         *string  `json:"status"`
}

// Debris is a tracked non-cooperative object.
type Debris struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	ObjectType    string    `json:"object_type" yaml:"object_type"`
	Latitude      float64   `json:"latitude" yaml:"latitude"`
	Longitude     float64   `json:"longitude" yaml:"longitude"`
	AltitudeKm    float64   `json:"altitude_km" yaml:"altitude_km"`
	VelocityKmps  float64   `json:"velocity_kmps" yaml:"velocity_kmps"`
	SizeEstimateM float64   `json:"size_estimate_m" yaml:"size_estimate_m"`
	CreatedAt     time.Time `json:"created_at" yaml:"-"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"-"`
}

// Validate checks the ranges the API accepts on create.
func (d Debris) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("catalog: debris name is required")
	}
	switch d.ObjectType {
	case ObjectRocketBody, ObjectPayload, ObjectDebris, ObjectUnknown:
	default:
		return fmt.Errorf("catalog: unknown debris object type %q", d.ObjectType)
	}
	if d.Latitude < -90 || d.Latitude > 90 {
		return fmt.Errorf("catalog: latitude %v out of range [-90, 90]", d.Latitude)
	}
	if d.Longitude < -180 || d.Longitude > 180 {
		return fmt.Errorf("catalog: longitude %v out of range [-180, 180]", d.Longitude)
	}
	if d.AltitudeKm <= 0 || d.AltitudeKm >= 50000 {
		return fmt.Errorf("catalog: altitude %v km out of range (0, 50000)", d.AltitudeKm)
	}
	if d.VelocityKmps <= 0 || d.VelocityKmps >= 20 {
		return fmt.Errorf("catalog: velocity %v km/s out of range (0, 20)", d.VelocityKmps)
	}
	if d.SizeEstimateM <= 0 || d.SizeEstimateM >= 100 {
		return fmt.Errorf("catalog: size estimate %v m out of range (0, 100)", d.SizeEstimateM)
	}
	return nil
}

// DebrisUpdate carries a partial update; nil fields are left unchanged.
type DebrisUpdate struct {
	Name          *string  `json:"name"`
	ObjectType    *string  `json:"object_type"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	AltitudeKm    *float64 `json:"altitude_km"`
	VelocityKmps  *float64 `json:"velocity_kmps"`
	SizeEstimateM *float64 `json:"size_estimate_m"`
}

// Alert severities, ordered.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert is an operator-facing notification, usually generated from a
// collision event but also creatable directly through the API.
type Alert struct {
	ID             string     `json:"id"`
	Severity       string     `json:"severity"`
	Message        string     `json:"message"`
	SatelliteID    string     `json:"satellite_id,omitempty"`
	DebrisID       string     `json:"debris_id,omitempty"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CollisionEvent is one scored satellite/debris encounter from a conjunction
// scan. Distances are kilometres; Midpoint is in scene units for direct
// renderer consumption.
type CollisionEvent struct {
	ID                       string     `json:"id"`
	SatelliteID              string     `json:"satellite_id"`
	SatelliteName            string     `json:"satellite_name"`
	DebrisID                 string     `json:"debris_id"`
	DebrisName               string     `json:"debris_name"`
	DistanceKm               float64    `json:"distance_km"`
	RelativeVelocityKmps     float64    `json:"relative_velocity_kmps"`
	AltitudeDiffKm           float64    `json:"altitude_diff_km"`
	RiskScore                float64    `json:"risk_score"`
	RiskLevel                int        `json:"risk_level"`
	RiskLabel                string     `json:"risk_label"`
	TimeToClosestApproachSec float64    `json:"time_to_closest_approach_sec"`
	MinimumDistanceKm        float64    `json:"minimum_distance_km"`
	CollisionProbability     float64    `json:"collision_probability"`
	RecommendedAction        string     `json:"recommended_action"`
	ProgressFraction         float64    `json:"progress_fraction"`
	Midpoint                 [3]float64 `json:"midpoint"`
	Timestamp                time.Time  `json:"timestamp"`
}

// Maneuver statuses.
const (
	ManeuverPending  = "pending"
	ManeuverApproved = "approved"
	ManeuverExecuted = "executed"
)

// ManeuverPlan is a suggested avoidance burn for a satellite under threat.
// Delta-v is a km/s vector in the same km-space frame the conjunction layer
// derives state vectors in.
type ManeuverPlan struct {
	ID                 string     `json:"id"`
	SatelliteID        string     `json:"satellite_id"`
	ManeuverType       string     `json:"maneuver_type"`
	DeltaV             [3]float64 `json:"delta_v_kmps"`
	DeltaVMagKmps      float64    `json:"delta_v_mag_kmps"`
	BurnDurationSec    float64    `json:"burn_duration_sec"`
	ExpectedMissGainKm float64    `json:"expected_miss_gain_km"`
	Confidence         float64    `json:"confidence"`
	SafetyNote         string     `json:"safety_note"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}
