package catalog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the in-memory object catalog. All methods are safe for concurrent
// use. Records are copied on the way in and out.
type Store struct {
	mu         sync.RWMutex
	satellites map[string]Satellite
	debris     map[string]Debris
	alerts     map[string]Alert
	events     map[string]CollisionEvent
	eventOrder []string // newest last
	maneuvers  map[string]ManeuverPlan

	maxEvents int
}

// NewStore creates an empty catalog. maxEvents bounds the retained collision
// event history (oldest evicted first); <= 0 means the default of 1000.
func NewStore(maxEvents int) *Store {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &Store{
		satellites: make(map[string]Satellite),
		debris:     make(map[string]Debris),
		alerts:     make(map[string]Alert),
		events:     make(map[string]CollisionEvent),
		maneuvers:  make(map[string]ManeuverPlan),
		maxEvents:  maxEvents,
	}
}

// ListOptions filters list queries. Zero values mean "no filter" except
// Limit, where 0 falls back to the store default of 100.
type ListOptions struct {
	Status       string // satellites: operational status
	ObjectType   string // debris: object type
	Severity     string // alerts: severity
	Acknowledged *bool  // alerts: acknowledgement state
	Limit        int
	All          bool // ignore Limit entirely
}

func (o ListOptions) effectiveLimit() int {
	if o.All {
		return 0
	}
	if o.Limit <= 0 {
		return 100
	}
	return o.Limit
}

// CreateSatellite validates, mints an ID if absent, and stores the record.
func (s *Store) CreateSatellite(sat Satellite) (Satellite, error) {
	if sat.Status == "" {
		sat.Status = StatusActive
	}
	if err := sat.Validate(); err != nil {
		return Satellite{}, err
	}
	if sat.ID == "" {
		sat.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sat.CreatedAt = now
	sat.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.satellites[sat.ID]; ok {
		return Satellite{}, fmt.Errorf("catalog: satellite %s already exists", sat.ID)
	}
	s.satellites[sat.ID] = sat
	return sat, nil
}

// GetSatellite returns the satellite with the given ID.
func (s *Store) GetSatellite(id string) (Satellite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sat, ok := s.satellites[id]
	if !ok {
		return Satellite{}, ErrNotFound
	}
	return sat, nil
}

// ListSatellites returns satellites ordered by creation time, oldest first.
func (s *Store) ListSatellites(opts ListOptions) []Satellite {
	s.mu.RLock()
	out := make([]Satellite, 0, len(s.satellites))
	for _, sat := range s.satellites {
		if opts.Status != "" && sat.Status != opts.Status {
			continue
		}
		out = append(out, sat)
	}
	s.mu.RUnlock()

	sortByCreation(out, func(sat Satellite) (time.Time, string) { return sat.CreatedAt, sat.ID })
	return truncate(out, opts.effectiveLimit())
}

// UpdateSatellite applies a partial update and revalidates the result.
func (s *Store) UpdateSatellite(id string, upd SatelliteUpdate) (Satellite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sat, ok := s.satellites[id]
	if !ok {
		return Satellite{}, ErrNotFound
	}
	if upd.Name != nil {
		sat.Name = *upd.Name
	}
	if upd.Latitude != nil {
		sat.Latitude = *upd.Latitude
	}
	if upd.Longitude != nil {
		sat.Longitude = *upd.Longitude
	}
	if upd.AltitudeKm != nil {
		sat.AltitudeKm = *upd.AltitudeKm
	}
	if upd.InclinationDeg != nil {
		sat.InclinationDeg = *upd.InclinationDeg
	}
	if upd.VelocityKmps != nil {
		sat.VelocityKmps = *upd.VelocityKmps
	}
	if upd.Status != nil {
		sat.Status = *upd.Status
	}
	if err := sat.Validate(); err != nil {
		return Satellite{}, err
	}
	sat.UpdatedAt = time.Now().UTC()
	s.satellites[id] = sat
	return sat, nil
}

// SetGeodeticFix overwrites a satellite's current position. Used by the
// propagation refresher; bypasses the create-time range validation because a
// propagated fix is authoritative.
func (s *Store) SetGeodeticFix(id string, latDeg, lonDeg, altKm float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sat, ok := s.satellites[id]
	if !ok {
		return ErrNotFound
	}
	sat.Latitude = latDeg
	sat.Longitude = lonDeg
	sat.AltitudeKm = altKm
	sat.UpdatedAt = time.Now().UTC()
	s.satellites[id] = sat
	return nil
}

// DeleteSatellite removes the satellite with the given ID.
func (s *Store) DeleteSatellite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.satellites[id]; !ok {
		return ErrNotFound
	}
	delete(s.satellites, id)
	return nil
}

// CreateDebris validates, mints an ID if absent, and stores the record.
func (s *Store) CreateDebris(d Debris) (Debris, error) {
	if d.ObjectType == "" {
		d.ObjectType = ObjectUnknown
	}
	if d.SizeEstimateM == 0 {
		d.SizeEstimateM = 1.0
	}
	if err := d.Validate(); err != nil {
		return Debris{}, err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debris[d.ID]; ok {
		return Debris{}, fmt.Errorf("catalog: debris %s already exists", d.ID)
	}
	s.debris[d.ID] = d
	return d, nil
}

// GetDebris returns the debris object with the given ID.
func (s *Store) GetDebris(id string) (Debris, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.debris[id]
	if !ok {
		return Debris{}, ErrNotFound
	}
	return d, nil
}

// ListDebris returns debris ordered by creation time, oldest first.
func (s *Store) ListDebris(opts ListOptions) []Debris {
	s.mu.RLock()
	out := make([]Debris, 0, len(s.debris))
	for _, d := range s.debris {
		if opts.ObjectType != "" && d.ObjectType != opts.ObjectType {
			continue
		}
		out = append(out, d)
	}
	s.mu.RUnlock()

	sortByCreation(out, func(d Debris) (time.Time, string) { return d.CreatedAt, d.ID })
	return truncate(out, opts.effectiveLimit())
}

// UpdateDebris applies a partial update and revalidates the result.
func (s *Store) UpdateDebris(id string, upd DebrisUpdate) (Debris, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.debris[id]
	if !ok {
		return Debris{}, ErrNotFound
	}
	if upd.Name != nil {
		d.Name = *upd.Name
	}
	if upd.ObjectType != nil {
		d.ObjectType = *upd.ObjectType
	}
	if upd.Latitude != nil {
		d.Latitude = *upd.Latitude
	}
	if upd.Longitude != nil {
		d.Longitude = *upd.Longitude
	}
	if upd.AltitudeKm != nil {
		d.AltitudeKm = *upd.AltitudeKm
	}
	if upd.VelocityKmps != nil {
		d.VelocityKmps = *upd.VelocityKmps
	}
	if upd.SizeEstimateM != nil {
		d.SizeEstimateM = *upd.SizeEstimateM
	}
	if err := d.Validate(); err != nil {
		return Debris{}, err
	}
	d.UpdatedAt = time.Now().UTC()
	s.debris[id] = d
	return d, nil
}

// DeleteDebris removes the debris object with the given ID.
func (s *Store) DeleteDebris(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debris[id]; !ok {
		return ErrNotFound
	}
	delete(s.debris, id)
	return nil
}

// CreateAlert stores a new alert, minting ID and timestamps.
func (s *Store) CreateAlert(a Alert) Alert {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Severity == "" {
		a.Severity = SeverityLow
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Acknowledged = false
	a.AcknowledgedAt = nil

	s.mu.Lock()
	s.alerts[a.ID] = a
	s.mu.Unlock()
	return a
}

// GetAlert returns the alert with the given ID.
func (s *Store) GetAlert(id string) (Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	return a, nil
}

// ListAlerts returns alerts newest first, filtered by severity and
// acknowledgement state.
func (s *Store) ListAlerts(opts ListOptions) []Alert {
	s.mu.RLock()
	out := make([]Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if opts.Severity != "" && a.Severity != opts.Severity {
			continue
		}
		if opts.Acknowledged != nil && a.Acknowledged != *opts.Acknowledged {
			continue
		}
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, opts.effectiveLimit())
}

// AcknowledgeAlert marks an alert acknowledged.
func (s *Store) AcknowledgeAlert(id string) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return Alert{}, ErrNotFound
	}
	now := time.Now().UTC()
	a.Acknowledged = true
	a.AcknowledgedAt = &now
	a.UpdatedAt = now
	s.alerts[id] = a
	return a, nil
}

// RecordCollisionEvent persists a scan result. History is bounded; the
// oldest events are evicted once the cap is reached.
func (s *Store) RecordCollisionEvent(e CollisionEvent) CollisionEvent {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	s.eventOrder = append(s.eventOrder, e.ID)
	for len(s.eventOrder) > s.maxEvents {
		delete(s.events, s.eventOrder[0])
		s.eventOrder = s.eventOrder[1:]
	}
	return e
}

// GetCollisionEvent returns the collision event with the given ID.
func (s *Store) GetCollisionEvent(id string) (CollisionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return CollisionEvent{}, ErrNotFound
	}
	return e, nil
}

// ListCollisionEvents returns recorded events, newest first.
func (s *Store) ListCollisionEvents(opts ListOptions) []CollisionEvent {
	s.mu.RLock()
	out := make([]CollisionEvent, 0, len(s.eventOrder))
	for i := len(s.eventOrder) - 1; i >= 0; i-- {
		out = append(out, s.events[s.eventOrder[i]])
	}
	s.mu.RUnlock()
	return truncate(out, opts.effectiveLimit())
}

// CreateManeuver stores a maneuver plan, minting ID and timestamp.
func (s *Store) CreateManeuver(m ManeuverPlan) ManeuverPlan {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = ManeuverPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.maneuvers[m.ID] = m
	s.mu.Unlock()
	return m
}

// ListManeuvers returns maneuver plans newest first, optionally filtered to
// one satellite.
func (s *Store) ListManeuvers(satelliteID string, opts ListOptions) []ManeuverPlan {
	s.mu.RLock()
	out := make([]ManeuverPlan, 0, len(s.maneuvers))
	for _, m := range s.maneuvers {
		if satelliteID != "" && m.SatelliteID != satelliteID {
			continue
		}
		out = append(out, m)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, opts.effectiveLimit())
}

// Counts reports catalog sizes for readiness and metrics.
func (s *Store) Counts() (satellites, debris, alerts, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.satellites), len(s.debris), len(s.alerts), len(s.events)
}

func sortByCreation[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
