package api

import (
	"net/http"
	"strconv"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/orbit"
)

func (s *Server) handleCreateSatellite(w http.ResponseWriter, r *http.Request) {
	var sat catalog.Satellite
	if err := decodeBody(r, &sat); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateSatellite(sat)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.logger.Info("satellite created", "component", "api", "id", created.ID, "name", created.Name)
	respondData(w, http.StatusCreated, created)
}

func (s *Server) handleListSatellites(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{Status: r.URL.Query().Get("status")}
	var err error
	if opts.Limit, err = queryInt(r, "limit", 0, 1, 1000); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sats := s.store.ListSatellites(opts)
	respondList(w, sats, len(sats))
}

func (s *Server) handleGetSatellite(w http.ResponseWriter, r *http.Request) {
	sat, err := s.store.GetSatellite(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, sat)
}

func (s *Server) handleUpdateSatellite(w http.ResponseWriter, r *http.Request) {
	var upd catalog.SatelliteUpdate
	if err := decodeBody(r, &upd); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sat, err := s.store.UpdateSatellite(r.PathValue("id"), upd)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, sat)
}

func (s *Server) handleDeleteSatellite(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSatellite(r.PathValue("id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "satellite deleted")
}

// scenePosition is the renderer-facing position payload.
type scenePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// handleSatellitePosition returns the satellite's current scene-space
// position. GET /api/v1/satellites/{id}/position?earth_radius=2.0
func (s *Server) handleSatellitePosition(w http.ResponseWriter, r *http.Request) {
	sat, err := s.store.GetSatellite(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	earthRadius, err := queryFloat(r, "earth_radius", orbit.DefaultSceneEarthRadius)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := orbit.ToScenePosition(sat.Latitude, sat.Longitude, sat.AltitudeKm, earthRadius)
	respondData(w, http.StatusOK, scenePosition{X: p.X, Y: p.Y, Z: p.Z})
}

// handleSatelliteTrajectory returns the satellite's generated orbit path.
// GET /api/v1/satellites/{id}/trajectory?samples=100&companion=true
func (s *Server) handleSatelliteTrajectory(w http.ResponseWriter, r *http.Request) {
	sat, err := s.store.GetSatellite(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	samples, err := queryInt(r, "samples", orbit.DefaultSampleCount, 2, 10000)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var path orbit.Trajectory
	if r.URL.Query().Get("companion") == "true" {
		path = orbit.GenerateCompanionPath(sat.Latitude, sat.Longitude, sat.AltitudeKm, samples, orbit.DefaultCompanionOffset())
	} else {
		path = orbit.GenerateOrbitPath(sat.Latitude, sat.Longitude, sat.AltitudeKm, samples)
	}

	points := make([]scenePosition, len(path))
	for i, p := range path {
		points[i] = scenePosition{X: p.X, Y: p.Y, Z: p.Z}
	}
	respondList(w, points, len(points))
}

// queryInt parses an optional integer query parameter within [min, max].
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, errInvalidParam(name, v)
	}
	return n, nil
}

// queryFloat parses an optional positive float query parameter.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, errInvalidParam(name, v)
	}
	return f, nil
}

type paramError struct {
	name, value string
}

func (e paramError) Error() string {
	return "invalid " + e.name + " parameter: " + e.value
}

func errInvalidParam(name, value string) error {
	return paramError{name: name, value: value}
}
