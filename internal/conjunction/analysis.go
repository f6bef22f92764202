package conjunction

import (
	"fmt"
	"sort"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

// DefaultTopThreats bounds an analysis report when the caller does not ask
// for a specific count.
const DefaultTopThreats = 5

// Threat is one debris object ranked against the analyzed satellite.
type Threat struct {
	Debris               catalog.Debris `json:"debris"`
	DistanceKm           float64        `json:"distance_km"`
	Features             Features       `json:"features"`
	RiskScore            float64        `json:"risk_score"`
	RiskLevel            int            `json:"risk_level"`
	RiskLabel            string         `json:"risk_label"`
	RiskColor            string         `json:"risk_color"`
	CollisionProbability float64        `json:"collision_probability"`
	RecommendedAction    string         `json:"recommended_action"`
}

// Report is an on-demand risk assessment for one satellite: its nearest
// debris with full risk breakdowns, and optionally a suggested avoidance
// maneuver against the top threat.
type Report struct {
	Satellite   catalog.Satellite     `json:"satellite"`
	Threats     []Threat              `json:"threats"`
	Maneuver    *catalog.ManeuverPlan `json:"maneuver,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Analyze ranks every debris object by current distance to the satellite and
// scores the nearest topN. When includeManeuver is set and the top threat is
// at warning level or above, a suggested burn is persisted to the catalog
// and attached to the report.
func (e *Engine) Analyze(satelliteID string, topN int, includeManeuver bool) (Report, error) {
	sat, err := e.store.GetSatellite(satelliteID)
	if err != nil {
		return Report{}, fmt.Errorf("conjunction: analyze %s: %w", satelliteID, err)
	}
	if topN <= 0 {
		topN = DefaultTopThreats
	}

	satState := SatelliteState(sat)
	debris := e.store.ListDebris(catalog.ListOptions{All: true})

	type ranked struct {
		deb   catalog.Debris
		state State
		dist  float64
	}
	candidates := make([]ranked, 0, len(debris))
	for _, d := range debris {
		st := DebrisState(d)
		candidates = append(candidates, ranked{deb: d, state: st, dist: satState.Pos.DistanceTo(st.Pos)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if topN < len(candidates) {
		candidates = candidates[:topN]
	}

	report := Report{
		Satellite:   sat,
		Threats:     make([]Threat, 0, len(candidates)),
		GeneratedAt: time.Now().UTC(),
	}

	for _, c := range candidates {
		feats := ComputeFeatures(satState, c.state, e.cfg.Lookahead)
		level := Classify(feats.DistanceKm, feats.RelativeVelocityKmps, feats.ApproachAngleDeg)
		report.Threats = append(report.Threats, Threat{
			Debris:               c.deb,
			DistanceKm:           c.dist,
			Features:             feats,
			RiskScore:            Score(feats),
			RiskLevel:            int(level),
			RiskLabel:            level.Label(),
			RiskColor:            level.Color(),
			CollisionProbability: CollisionProbability(feats.DistanceKm, feats.RelativeVelocityKmps, defaultSatelliteSizeM, c.deb.SizeEstimateM),
			RecommendedAction:    level.RecommendedAction(),
		})
	}

	if includeManeuver && len(report.Threats) > 0 && report.Threats[0].RiskLevel >= int(LevelWarning) {
		top := report.Threats[0]
		plan := SuggestManeuver(satState, DebrisState(top.Debris), top.Features)
		plan.SatelliteID = sat.ID
		plan = e.store.CreateManeuver(plan)
		report.Maneuver = &plan

		e.logger.Info("maneuver suggested",
			"satellite_id", sat.ID,
			"debris_id", top.Debris.ID,
			"delta_v_mps", plan.DeltaVMagKmps*1000,
			"expected_gain_km", plan.ExpectedMissGainKm,
		)
	}

	return report, nil
}
