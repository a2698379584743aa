package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trena/internal/activity"
	"trena/internal/connector"
	"trena/internal/fitness"
	"trena/internal/store"
	"trena/internal/synclog"
)

func jsonWrite(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonWrite(w, status, map[string]string{"error": msg})
}

// POST /api/sync -> start a sync run in the background. Accepts an
// optional afterDate=RFC3339 query for incremental runs.
func (s *Server) handleSyncStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var afterDate *time.Time
	if raw := r.URL.Query().Get("afterDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "afterDate must be RFC3339")
			return
		}
		afterDate = &t
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := s.conn.SyncAfter(ctx, afterDate)
	if err != nil {
		cancel()
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	s.syncMu.Lock()
	s.cancel = cancel
	s.syncMu.Unlock()

	synclog.Printf("web: sync triggered")
	go func() {
		connector.Drain(events, s.db)
		s.syncMu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.syncMu.Unlock()
	}()

	jsonWrite(w, http.StatusAccepted, map[string]any{"started": true})
}

// POST /api/sync/stop -> request cancellation of the running sync.
func (s *Server) handleSyncStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	s.syncMu.Lock()
	running := s.cancel != nil
	if running {
		s.cancel()
	}
	s.syncMu.Unlock()
	jsonWrite(w, http.StatusOK, map[string]bool{"stopped": running})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	jsonWrite(w, http.StatusOK, map[string]bool{"syncing": s.conn.Syncing()})
}

// GET /api/activities -> full activity list, ordered by start time.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := s.db.All()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if acts == nil {
		acts = []*activity.Synced{}
	}
	jsonWrite(w, http.StatusOK, acts)
}

// GET|DELETE /api/activity/{id}
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/activity/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		a, err := s.db.ByID(id)
		if err == store.ErrNotFound {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			jsonError(w, http.StatusInternalServerError, err.Error())
			return
		}
		jsonWrite(w, http.StatusOK, a)
	case http.MethodDelete:
		if err := s.db.Delete(id); err == store.ErrNotFound {
			http.NotFound(w, r)
			return
		} else if err != nil {
			jsonError(w, http.StatusInternalServerError, err.Error())
			return
		}
		jsonWrite(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		http.Error(w, "GET or DELETE", http.StatusMethodNotAllowed)
	}
}

// GET /api/streams/{id} -> inflated stream payload.
func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/streams/")
	deflated, err := s.db.Streams(id)
	if err == store.ErrNotFound {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	streams, err := activity.Inflate(deflated)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonWrite(w, http.StatusOK, streams)
}

// GET /api/trend -> the CTL/ATL/TSB day sequence. Optional ctl0/atl0
// query parameters seed the filter.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	acts, err := s.db.All()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var seed *fitness.Seed
	if c, a := r.URL.Query().Get("ctl0"), r.URL.Query().Get("atl0"); c != "" || a != "" {
		ctl0, _ := strconv.ParseFloat(c, 64)
		atl0, _ := strconv.ParseFloat(a, 64)
		seed = &fitness.Seed{CTL: ctl0, ATL: atl0}
	}

	trend, err := fitness.Trend(acts, s.cfg.FitnessConfig(), time.Now(), seed)
	if err != nil {
		if fe, ok := err.(*fitness.Error); ok {
			jsonWrite(w, http.StatusUnprocessableEntity, map[string]string{
				"error": fe.Message,
				"code":  fe.Code,
			})
			return
		}
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonWrite(w, http.StatusOK, trend)
}

// GET /api/logs -> Server-Sent Events (live sync logs)
func (s *Server) handleLogsSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a small snapshot first so the pane isn't empty
	for _, line := range synclog.Snapshot(50) {
		_, _ = w.Write([]byte("data: " + line + "\n\n"))
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ch := synclog.Subscribe()
	defer synclog.Unsubscribe(ch)

	notify := r.Context().Done()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-notify:
			return
		case line := <-ch:
			_, _ = w.Write([]byte("data: " + line + "\n\n"))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-ticker.C:
			// keep-alive comment frame
			_, _ = w.Write([]byte(": ping\n\n"))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
