// Package web exposes the sync pipeline and the fitness trend as a small
// JSON API. One sync runs at a time; its events are drained into the
// sync log and the stream store.
package web

import (
	"net/http"
	"sync"

	"trena/internal/cfg"
	"trena/internal/connector"
	"trena/internal/store"
)

type Server struct {
	cfg  cfg.Config
	db   *store.DB
	mux  *http.ServeMux
	conn *connector.Connector

	syncMu sync.Mutex
	cancel func()
}

func New(c cfg.Config, db *store.DB, conn *connector.Connector) *http.Server {
	mux := http.NewServeMux()
	s := &Server{cfg: c, db: db, mux: mux, conn: conn}

	mux.HandleFunc("/api/login", s.handleLogin)    // POST
	mux.HandleFunc("/api/logout", s.handleLogout)  // POST
	mux.HandleFunc("/api/sync", s.handleSyncStart) // POST
	mux.HandleFunc("/api/sync/stop", s.handleSyncStop)
	mux.HandleFunc("/api/sync/status", s.handleSyncStatus)
	mux.HandleFunc("/api/activities", s.handleActivities)
	mux.HandleFunc("/api/activity/", s.handleActivity) // GET, DELETE
	mux.HandleFunc("/api/streams/", s.handleStreams)
	mux.HandleFunc("/api/trend", s.handleTrend)
	mux.HandleFunc("/api/logs", s.handleLogsSSE) // GET (SSE)

	return &http.Server{Addr: c.HTTPAddr, Handler: s.withSession(mux)}
}

// withSession guards every route but /api/login behind a session cookie.
// Auth only engages once a user account exists.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			next.ServeHTTP(w, r)
			return
		}
		hasUsers, err := s.db.HasUsers()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !hasUsers {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, err := s.db.GetSession(cookie.Value); err != nil {
			jsonError(w, http.StatusUnauthorized, "session expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}
