package webd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/strideway/strided/params"
	"github.com/strideway/strided/state"
	"github.com/strideway/strided/stream"
	"github.com/strideway/strided/tracker"
	"github.com/strideway/strided/types/sample"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Config    *params.WebDaemonConfig `json:"config"`
	Tracking  bool                    `json:"tracking"`
	WSOpen    bool                    `json:"ws_open"`
	WSConns   int                     `json:"ws_conns"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Config:    s.Config,
		Tracking:  s.tracker.IsActive(),
		WSOpen:    !s.melodyInstance.IsClosed(),
		WSConns:   s.melodyInstance.Len(),
	}
	j, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal status", "error", err)
		http.Error(w, "Failed to marshal status", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(j)
}

// handleLive reports the current fused state: activity, confidence, running
// stats, last-known samples.
func (s *WebDaemon) handleLive(w http.ResponseWriter, r *http.Request) {
	if err := json.NewEncoder(w).Encode(s.engine.Snapshot()); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// handleRecentEntries returns the latest accepted log entries, oldest first.
func (s *WebDaemon) handleRecentEntries(w http.ResponseWriter, r *http.Request) {
	if err := json.NewEncoder(w).Encode(s.recent.Get()); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// handleLastRoute returns the most recently saved route.
func (s *WebDaemon) handleLastRoute(w http.ResponseWriter, r *http.Request) {
	route := s.store.LastRoute()
	if route == nil {
		// Cache cold, fall back to the store.
		routes, err := s.store.ListRoutes()
		if err != nil {
			http.Error(w, "Failed to list routes", http.StatusInternalServerError)
			return
		}
		if len(routes) == 0 {
			http.Error(w, "No routes", http.StatusNotFound)
			return
		}
		route = routes[0]
	}
	if err := json.NewEncoder(w).Encode(route); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Start(r.Context()); err != nil {
		if errors.Is(err, tracker.ErrPermissionDenied) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		s.logger.Error("Start failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(s.engine.Snapshot())
}

func (s *WebDaemon) handleStop(w http.ResponseWriter, r *http.Request) {
	route, err := s.tracker.Stop(r.Context())
	if err != nil {
		s.logger.Error("Stop failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if route == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = json.NewEncoder(w).Encode(route)
}

// handleSamples ingests an NDJSON body of mixed location and acceleration
// documents and pushes them into the sensor feed. Samples pushed while the
// tracker is idle are dropped by the engine; this endpoint accepts them
// regardless, like a sensor would.
func (s *WebDaemon) handleSamples(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	received, skipped := 0, 0
	for line := range stream.RawLines(r.Context(), io.LimitReader(r.Body, 32<<20)) {
		d, err := sample.DecodeAny(line)
		if err != nil {
			skipped++
			continue
		}
		s.feed.Push(d)
		received++
	}
	_ = json.NewEncoder(w).Encode(map[string]int{
		"received": received,
		"skipped":  skipped,
	})
}

func (s *WebDaemon) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.store.ListRoutes()
	if err != nil {
		s.logger.Error("Failed to list routes", "error", err)
		http.Error(w, "Failed to list routes", http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(routes); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	route, err := s.store.GetRoute(id)
	if err != nil {
		if errors.Is(err, state.ErrRouteNotFound) {
			http.Error(w, "Route not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get route", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(route)
}

// handleRoutePath serves a route's path as GeoJSON, with start and end
// markers. Rendered documents are LRU-cached; saved routes are immutable.
func (s *WebDaemon) handleRoutePath(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if fc, ok := s.pathCache.Get(id); ok {
		_ = json.NewEncoder(w).Encode(fc)
		return
	}
	route, err := s.store.GetRoute(id)
	if err != nil {
		if errors.Is(err, state.ErrRouteNotFound) {
			http.Error(w, "Route not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get route", http.StatusInternalServerError)
		return
	}
	fc := route.PathFeatureCollection()
	s.pathCache.Add(id, fc)
	_ = json.NewEncoder(w).Encode(fc)
}

func (s *WebDaemon) handleRenameRoute(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body := struct {
		Name string `json:"name"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "Missing name", http.StatusBadRequest)
		return
	}
	route, err := s.store.RenameRoute(id, body.Name)
	if err != nil {
		if errors.Is(err, state.ErrRouteNotFound) {
			http.Error(w, "Route not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to rename route", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(route)
}

func (s *WebDaemon) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteRoute(id); err != nil {
		if errors.Is(err, state.ErrRouteNotFound) {
			http.Error(w, "Route not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete route", http.StatusInternalServerError)
		return
	}
	s.pathCache.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *WebDaemon) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.Totals()
	if err != nil {
		http.Error(w, "Failed to read totals", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(totals)
}

func (s *WebDaemon) handleGetClassifierConfig(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(s.engine.ClassifierConfig())
}

// handlePutClassifierConfig overlays the posted thresholds onto the current
// calibration. Zero-valued fields are left as they are.
func (s *WebDaemon) handlePutClassifierConfig(w http.ResponseWriter, r *http.Request) {
	patch := params.ClassifierConfig{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Malformed config", http.StatusBadRequest)
		return
	}
	merged := s.engine.ClassifierConfig().Merge(patch)
	if err := s.engine.SetClassifierConfig(merged); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(merged)
}
