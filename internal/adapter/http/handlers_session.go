package adapthttp

import (
	"errors"
	"log"
	"net/http"

	"chatboard/internal/app"
)

// handleSession reports the caller's state and hands out the anti-forgery
// token the state-changing endpoints demand. The polling client calls this
// first to decide which form to show.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	token, err := s.sessions.IssueCSRF(r.Context(), sess)
	if err != nil {
		log.Printf("csrf issue failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logged_in":  sess.Authenticated,
		"named":      sess.Named(),
		"username":   sess.Username,
		"csrf_token": token,
	})
}

// handleLogin checks the shared board password and moves the session to the
// password-verified state. The caller still has to pick a display name.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := parseForm(w, r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.sessions.VerifyCSRF(sess, r.PostFormValue("csrf_token")) {
		log.Printf("CSRF token mismatch on login from %s", r.RemoteAddr)
		writeError(w, http.StatusForbidden, app.ErrForgeryRejected.Error())
		return
	}

	if err := s.sessions.VerifyPassword(r.Context(), sess, r.PostFormValue("password")); err != nil {
		if errors.Is(err, app.ErrInvalidPassword) {
			log.Printf("failed login attempt from %s", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUsername records the caller's display name, completing the
// transition to named-and-active and registering them as present.
func (s *Server) handleUsername(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := parseForm(w, r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.sessions.VerifyCSRF(sess, r.PostFormValue("csrf_token")) {
		log.Printf("CSRF token mismatch on username input from %s", r.RemoteAddr)
		writeError(w, http.StatusForbidden, app.ErrForgeryRejected.Error())
		return
	}

	err := s.sessions.SetUsername(r.Context(), sess, r.PostFormValue("username"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "username": sess.Username})
	case errors.Is(err, app.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrEmptyUsername), errors.Is(err, app.ErrUsernameTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("set username failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleLogout removes the caller from the presence registry, discards the
// session, and expires the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !sess.Authenticated {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	if err := s.sessions.Logout(r.Context(), sess); err != nil {
		log.Printf("logout failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setSessionCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
