// ABOUTME: HTTP server wiring routes, middleware, and dependencies for dropnest
// ABOUTME: Owns the mux; handlers live in sibling files by surface

package server

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dropnest/dropnest/internal/auth"
	"github.com/dropnest/dropnest/internal/config"
	"github.com/dropnest/dropnest/internal/records"
	"github.com/dropnest/dropnest/internal/storage"
)

// Server handles all HTTP traffic for the dashboard backend. Every piece of
// shared mutable state (session registry, throttles, stores) is owned here
// and injected at construction; there are no package-level globals.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	sessions *auth.SessionStore
	files    *storage.FileStore
	notes    *records.Store
	vault    *records.Store

	loginThrottle *auth.Throttle
	adminThrottle *auth.Throttle
	admin         *auth.AdminVerifier

	handler http.Handler
}

// New creates a server with its routes registered. The throttles and the
// admin verifier are created here from cfg; the registries and stores are
// passed in so tests and the binary share one lifecycle.
func New(cfg *config.Config, logger *slog.Logger, sessions *auth.SessionStore, files *storage.FileStore, notes, vault *records.Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:           cfg,
		logger:        logger.With("component", "server"),
		sessions:      sessions,
		files:         files,
		notes:         notes,
		vault:         vault,
		loginThrottle: auth.NewThrottle(cfg.Auth.LoginMaxAttempts),
		adminThrottle: auth.NewThrottle(cfg.Auth.AdminMaxAttempts),
		admin:         auth.NewAdminVerifier(cfg.Auth.AdminPasswordHash),
	}

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/login", s.handleLogin)

	// Protected routes. The download and image routes additionally accept a
	// token query parameter for contexts that cannot set headers.
	headerAuth := auth.Middleware(sessions, false)
	queryAuth := auth.Middleware(sessions, true)

	mux.Handle("/logout", headerAuth(http.HandlerFunc(s.handleLogout)))
	mux.Handle("/admin/check-password", headerAuth(http.HandlerFunc(s.handleAdminCheck)))

	mux.Handle("/upload", headerAuth(http.HandlerFunc(s.handleUpload)))
	mux.Handle("/files", headerAuth(http.HandlerFunc(s.handleListFiles)))
	mux.Handle("/download/", queryAuth(http.HandlerFunc(s.handleDownload)))
	mux.Handle("/images/", queryAuth(http.HandlerFunc(s.handleImage)))

	mux.Handle("/notes", headerAuth(s.recordCollectionHandler(s.notes)))
	mux.Handle("/notes/", headerAuth(s.recordItemHandler(s.notes, "/notes/")))
	mux.Handle("/passwords", headerAuth(s.recordCollectionHandler(s.vault)))
	mux.Handle("/passwords/", headerAuth(s.recordItemHandler(s.vault, "/passwords/")))

	s.handler = s.logRequests(mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientKey returns the throttle key for an unauthenticated request: the
// host part of the client's network address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sendJSON writes a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request with method, path, status, and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}
