package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// envelope is the response wrapper every API endpoint returns.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Meta      any    `json:"meta,omitempty"`
}

// listMeta carries pagination context for list endpoints.
type listMeta struct {
	Count int `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Meta: listMeta{Count: count}})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// respondStoreError maps catalog errors to HTTP status codes: unknown IDs
// become 404, validation failures 400.
func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}

// decodeBody parses a bounded JSON request body into dst, rejecting unknown
// fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
