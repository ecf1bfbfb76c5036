package adapthttp

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"chatboard/internal/domain"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the request's session, or nil outside the session
// middleware.
func sessionFrom(r *http.Request) *domain.Session {
	s, _ := r.Context().Value(sessionContextKey).(*domain.Session)
	return s
}

// sessionMiddleware ensures every API request carries a live session:
// creates one on first contact, rotates the identifier when due, stamps
// activity, and refreshes the cookie when the identifier changed.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}

		sess, err := s.sessions.Ensure(r.Context(), id)
		if err != nil {
			log.Printf("session ensure failed: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if sess.ID != id {
			s.setSessionCookie(w, sess.ID, cookieMaxAge)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireNamed admits only callers in the named-and-active state. Everyone
// else receives a structured "not logged in" payload the polling client
// recognizes and turns into a redirect to the login page.
func (s *Server) requireNamed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.IsActive(sessionFrom(r)) {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request with a request ID, method,
// path, status, and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("[%s] %s %s %d %s", reqID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}
