package api

import (
	"net/http"
	"strconv"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/conjunction"
)

func (s *Server) handleListCollisionEvents(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{}
	var err error
	if opts.Limit, err = queryInt(r, "limit", 0, 1, 1000); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events := s.store.ListCollisionEvents(opts)
	respondList(w, events, len(events))
}

func (s *Server) handleGetCollisionEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.GetCollisionEvent(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, ev)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{Severity: r.URL.Query().Get("severity")}
	if v := r.URL.Query().Get("acknowledged"); v != "" {
		ack, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, errInvalidParam("acknowledged", v).Error())
			return
		}
		opts.Acknowledged = &ack
	}
	var err error
	if opts.Limit, err = queryInt(r, "limit", 0, 1, 1000); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts := s.store.ListAlerts(opts)
	respondList(w, alerts, len(alerts))
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var a catalog.Alert
	if err := decodeBody(r, &a); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch a.Severity {
	case catalog.SeverityLow, catalog.SeverityMedium, catalog.SeverityHigh:
	default:
		respondError(w, http.StatusBadRequest, "unknown alert severity")
		return
	}
	if a.Message == "" {
		respondError(w, http.StatusBadRequest, "alert message is required")
		return
	}

	created := s.store.CreateAlert(a)
	respondData(w, http.StatusCreated, created)
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.AcknowledgeAlert(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, a)
}

func (s *Server) handleListManeuvers(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{}
	var err error
	if opts.Limit, err = queryInt(r, "limit", 0, 1, 1000); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plans := s.store.ListManeuvers(r.URL.Query().Get("satellite_id"), opts)
	respondList(w, plans, len(plans))
}

// planManeuverRequest asks for an avoidance burn against the satellite's
// current top threat.
type planManeuverRequest struct {
	SatelliteID string `json:"satellite_id"`
}

func (s *Server) handlePlanManeuver(w http.ResponseWriter, r *http.Request) {
	var req planManeuverRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SatelliteID == "" {
		respondError(w, http.StatusBadRequest, "satellite_id is required")
		return
	}

	report, err := s.engine.Analyze(req.SatelliteID, 1, true)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if report.Maneuver == nil {
		respondMessage(w, http.StatusOK, "no maneuver required: top threat below warning level")
		return
	}
	respondData(w, http.StatusCreated, report.Maneuver)
}

// handleAnalysis runs the on-demand per-satellite threat assessment.
// GET /api/v1/analysis/{satellite_id}?top_n=5&include_maneuver=true
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	topN, err := queryInt(r, "top_n", conjunction.DefaultTopThreats, 1, 20)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	includeManeuver := r.URL.Query().Get("include_maneuver") == "true"

	report, err := s.engine.Analyze(r.PathValue("satellite_id"), topN, includeManeuver)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, report)
}

// handleRisks returns the top events from the latest scan snapshot.
// GET /api/v1/risks?top=10
func (s *Server) handleRisks(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r, "top", 10, 1, 100)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.engine.Snapshot()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, "no risk snapshot yet")
		return
	}

	events := snap.TopEvents(top)
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    events,
		Meta: map[string]any{
			"count":           len(events),
			"generated_at":    snap.GeneratedAt,
			"pairs_evaluated": snap.PairsEvaluated,
		},
	})
}
