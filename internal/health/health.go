// Package health serves liveness and readiness probes.
package health

import (
	"net/http"
	"sync/atomic"
)

// State tracks service readiness. The server is live as soon as it accepts
// connections, and ready once the startup catalog load has completed.
type State struct {
	ready atomic.Bool
}

// NewState returns a not-yet-ready probe state.
func NewState() *State {
	return &State{}
}

// SetReady marks the service ready.
func (s *State) SetReady() {
	s.ready.Store(true)
}

// Healthz returns 200 "ok\n" unconditionally.
func (s *State) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz returns 200 "ready\n" once startup has completed, 503 before.
func (s *State) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}
