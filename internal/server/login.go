// ABOUTME: Login, logout, and admin password-check handlers
// ABOUTME: Ties the credential verifier, throttles, and session registry together

package server

import (
	"encoding/json"
	"net/http"

	"github.com/dropnest/dropnest/internal/auth"
)

// loginRequest is the JSON request body for POST /login. A pointer slice
// distinguishes a missing or null field from an empty list: the former is a
// client error, never a failed verification.
type loginRequest struct {
	ImageSequence *[]int `json:"imageSequence"`
}

// adminCheckRequest is the JSON request body for POST /admin/check-password.
type adminCheckRequest struct {
	Password string `json:"password"`
}

// handleLogin handles POST /login requests. The attempt throttle is keyed by
// client network origin and consulted before the verifier: a throttled
// origin is refused even with the correct sequence.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ImageSequence == nil {
		s.sendJSONError(w, http.StatusBadRequest, "imageSequence must be a list of grid positions")
		return
	}

	key := clientKey(r)
	if !s.loginThrottle.Check(key) {
		s.logger.Warn("login throttled", "origin", key)
		s.sendJSONError(w, http.StatusTooManyRequests, "too many failed attempts")
		return
	}

	if !auth.VerifySequence(*req.ImageSequence, s.cfg.Auth.ImageSequence) {
		s.loginThrottle.Record(key, false)
		s.logger.Info("login failed", "origin", key, "attempts_left", s.loginThrottle.Remaining(key))
		s.sendJSONError(w, http.StatusUnauthorized, "incorrect image sequence")
		return
	}

	s.loginThrottle.Record(key, true)

	identity := auth.IdentityForSequence(s.cfg.Auth.ImageSequence)
	token, err := s.sessions.Issue(identity)
	if err != nil {
		s.logger.Error("issuing session token", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("login succeeded", "origin", key)
	s.sendJSON(w, http.StatusOK, map[string]string{
		"message": "login successful",
		"token":   token,
	})
}

// handleLogout handles POST /logout requests. Revoking the presented token
// is the only server-side way a session ends.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := auth.MustFromContext(r.Context())
	s.sessions.Revoke(sess.Token)

	s.sendJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// handleAdminCheck handles POST /admin/check-password requests. The throttle
// is keyed by authenticated identity rather than network origin: the caller
// already holds a token, and it is the token holder being rate limited.
func (s *Server) handleAdminCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req adminCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Password == "" {
		s.sendJSONError(w, http.StatusBadRequest, "password is required")
		return
	}

	if !s.admin.Configured() {
		s.sendJSONError(w, http.StatusServiceUnavailable, "admin password not configured")
		return
	}

	sess := auth.MustFromContext(r.Context())
	if !s.adminThrottle.Check(sess.Identity) {
		s.logger.Warn("admin check throttled", "identity", sess.Identity)
		s.sendJSONError(w, http.StatusTooManyRequests, "too many failed attempts")
		return
	}

	if !s.admin.Verify(req.Password) {
		s.adminThrottle.Record(sess.Identity, false)
		s.sendJSONError(w, http.StatusForbidden, "incorrect password")
		return
	}

	s.adminThrottle.Record(sess.Identity, true)
	s.sendJSON(w, http.StatusOK, map[string]bool{"success": true})
}
