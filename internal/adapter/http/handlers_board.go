package adapthttp

import (
	"errors"
	"log"
	"net/http"

	"chatboard/internal/app"
)

// handleUsers refreshes the caller's own presence, sweeps idle entries, and
// returns the deduplicated list of active display names.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.sessions.Touch(r.Context(), sess)

	users := s.presence.ActiveUsers(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(users),
		"users": users,
	})
}

// handleMessagesGet returns the message log verbatim. Stored content is
// already sanitized, so the client renders it as-is.
func (s *Server) handleMessagesGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.messages.List(r.Context()))
}

// handleMessagesPost validates and appends one message from the caller,
// with an optional trip secret for a pseudonymous badge.
func (s *Server) handleMessagesPost(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := parseForm(w, r); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.sessions.VerifyCSRF(sess, r.PostFormValue("csrf_token")) {
		log.Printf("CSRF token mismatch on post for user %s from %s", sess.Username, r.RemoteAddr)
		writeError(w, http.StatusForbidden, app.ErrForgeryRejected.Error())
		return
	}

	err := s.messages.Append(r.Context(), sess.Username, r.PostFormValue("trip_password"), r.PostFormValue("message"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, app.ErrEmptyMessage), errors.Is(err, app.ErrMessageTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("message append failed for user %s: %v", sess.Username, err)
		writeError(w, http.StatusInternalServerError, "failed to save message")
	}
}
