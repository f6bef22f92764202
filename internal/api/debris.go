package api

import (
	"net/http"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

func (s *Server) handleCreateDebris(w http.ResponseWriter, r *http.Request) {
	var d catalog.Debris
	if err := decodeBody(r, &d); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateDebris(d)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.logger.Info("debris created", "component", "api", "id", created.ID, "name", created.Name)
	respondData(w, http.StatusCreated, created)
}

func (s *Server) handleListDebris(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{ObjectType: r.URL.Query().Get("object_type")}
	var err error
	if opts.Limit, err = queryInt(r, "limit", 0, 1, 1000); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	debris := s.store.ListDebris(opts)
	respondList(w, debris, len(debris))
}

func (s *Server) handleGetDebris(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDebris(r.PathValue("id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDebris(w http.ResponseWriter, r *http.Request) {
	var upd catalog.DebrisUpdate
	if err := decodeBody(r, &upd); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.store.UpdateDebris(r.PathValue("id"), upd)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondData(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDebris(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDebris(r.PathValue("id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "debris deleted")
}
